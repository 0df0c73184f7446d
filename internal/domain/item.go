package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Category es la clasificación gruesa del item usada para aplicar los límites
// de precio por categoría. Enumeración cerrada: cualquier combinación de tags
// que no encaje es un error de datos, no una categoría implícita.
type Category int

const (
	CategoryOther Category = iota
	CategoryNormalCard
	CategoryFoilCard
)

func (c Category) String() string {
	switch c {
	case CategoryNormalCard:
		return "normal_card"
	case CategoryFoilCard:
		return "foil_card"
	default:
		return "other"
	}
}

// Códigos de clase que asigna el market a las cartas.
const (
	classCodeNormalCard = 20
	classCodeFoilCard   = 21

	cardItemClass    = "item_class_2"
	normalCardBorder = "cardborder_0"
	foilCardBorder   = "cardborder_1"
)

// Item es un asset del inventario con su descripción ya resuelta.
type Item struct {
	AppID          int
	ContextID      string
	AssetID        string
	ClassID        string
	InstanceID     string
	Amount         int
	Name           string
	TypeDetail     string // string de tipo detallado, opaco para el engine
	MarketName     string
	MarketHashName string
	Tradable       bool
	Marketable     bool

	// PublisherFeePercent viene en la descripción del item cuando el publisher
	// fija su propia comisión; nil usa el default de la cuenta.
	PublisherFeePercent *float64

	ClassCode int
	Category  Category
}

// ClassifyTags convierte los tags de categoría del item (category →
// internal_name) en un código de clase y una Category.
//
// Las cartas (item_class_2) se parten por cardborder en normal (20) y foil
// (21); un cardborder desconocido es un error. El resto de clases toma el
// sufijo numérico de item_class_N y cae en CategoryOther.
func ClassifyTags(tags map[string]string) (int, Category, error) {
	class, ok := tags["item_class"]
	if !ok {
		return 0, CategoryOther, fmt.Errorf("classify: missing item_class tag: %w", ErrUnknownCategory)
	}
	if class == cardItemClass {
		switch tags["cardborder"] {
		case normalCardBorder:
			return classCodeNormalCard, CategoryNormalCard, nil
		case foilCardBorder:
			return classCodeFoilCard, CategoryFoilCard, nil
		default:
			return 0, CategoryOther, fmt.Errorf("classify: cardborder %q: %w", tags["cardborder"], ErrUnknownCategory)
		}
	}
	idx := strings.LastIndex(class, "_")
	if idx < 0 {
		return 0, CategoryOther, fmt.Errorf("classify: item_class %q: %w", class, ErrUnknownCategory)
	}
	code, err := strconv.Atoi(class[idx+1:])
	if err != nil {
		return 0, CategoryOther, fmt.Errorf("classify: item_class %q: %w", class, ErrUnknownCategory)
	}
	return code, CategoryOther, nil
}
