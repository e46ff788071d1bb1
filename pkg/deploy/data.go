package deploy

import (
	"fmt"

	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// Fruits are the names of the seeded products.
var Fruits = []string{
	"Pineapple",
	"Rockmelon",
	"Watermelon",
	"Strawberries",
	"Green grapes",
	"Red grapes",
	"Passionfruit",
	"Lime juice",
}

// CreateData adds one Product per fruit. The class is looked up by name, so this fails
// with *domain.UnknownClassError if the schema is not deployed.
func CreateData(tx *workspace.Tx) error {
	for _, name := range Fruits {
		product, err := tx.CreateNamed("Product")
		if err != nil {
			return err
		}
		if err := product.SetString("name", name); err != nil {
			return fmt.Errorf("product %q: %w", name, err)
		}
	}
	return nil
}
