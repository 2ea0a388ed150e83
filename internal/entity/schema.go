package entity

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

const schemaSource = `
#Plan: "one-time" | "subscription"

#CartItem: {
	id:       string & !=""
	name:     string
	price:    int & >=0
	quantity: int & >=1
	plan:     #Plan
	...
}

#WishlistItem: {
	id:    string & !=""
	name:  string
	price: int & >=0
	...
}

#Cart: [...#CartItem]
#Wishlist: [...#WishlistItem]
`

// Schema validates a raw JSON payload against a CUE definition.
type Schema struct {
	def string
}

var (
	// CartSchema accepts a JSON array of cart items.
	CartSchema = Schema{def: "#Cart"}

	// WishlistSchema accepts a JSON array of wishlist items.
	WishlistSchema = Schema{def: "#Wishlist"}
)

// cue values are not safe for concurrent use; every access goes through cueMu.
var (
	cueMu   sync.Mutex
	cueCtx  *cue.Context
	cueRoot cue.Value
)

func compiledSchema() (*cue.Context, cue.Value, error) {
	if cueCtx == nil {
		cueCtx = cuecontext.New()
		cueRoot = cueCtx.CompileString(schemaSource)
	}
	if err := cueRoot.Err(); err != nil {
		return nil, cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return cueCtx, cueRoot, nil
}

// Validate reports whether data is a concrete instance of the schema.
func (s Schema) Validate(data []byte) error {
	cueMu.Lock()
	defer cueMu.Unlock()

	ctx, root, err := compiledSchema()
	if err != nil {
		return err
	}

	def := root.LookupPath(cue.ParsePath(s.def))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup %s: %w", s.def, err)
	}

	expr, err := cuejson.Extract(s.def, data)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	value := ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("payload does not match %s: %w", s.def, err)
	}
	return nil
}

// String returns the definition name.
func (s Schema) String() string {
	return s.def
}
