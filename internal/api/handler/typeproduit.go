package handler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/descriptor"
	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
)

const typeProduitCollection = "type-produits"

// TypeProduitScreen describes the product category screens.
func TypeProduitScreen() ScreenConfig {
	base := "/" + typeProduitCollection
	idField := descriptor.DefaultIDField
	return ScreenConfig{
		Collection:  typeProduitCollection,
		Heading:     "Types de Produits",
		Entity:      "type de produit",
		CreateLabel: "Nouveau Type",
		Table: descriptor.TableConfig{
			Columns: []descriptor.Column{
				{Key: "nomTypeProduit", Label: "Nom du Type", Sortable: true, Width: "70%"},
				{Key: "createdAt", Label: "Date de création", Kind: descriptor.ColumnDate, Sortable: true, Width: "30%"},
			},
			Actions:      []descriptor.Action{EditAction(base, idField), DeleteAction(base, idField)},
			RowRoute:     base,
			IDField:      idField,
			ShowActions:  true,
			Pageable:     true,
			PageSize:     10,
			EmptyMessage: "Aucun type de produit trouvé",
		},
		Form: descriptor.FormConfig{
			SubmitLabel: "Enregistrer",
			Fields: []descriptor.Field{
				{Key: "nomTypeProduit", Label: "Type de produit", Kind: descriptor.FieldText, Placeholder: "Ex: Électronique", Required: true},
			},
		},
		ConfirmDelete: func(row descriptor.Record) string {
			return fmt.Sprintf("Voulez-vous vraiment supprimer %q ?", fmt.Sprint(row["nomTypeProduit"]))
		},
	}
}

func NewTypeProduitScreen(client ports.EntityClient[domain.TypeProduit], log zerolog.Logger) *Screen[domain.TypeProduit] {
	return NewScreen(client, TypeProduitScreen(), log)
}
