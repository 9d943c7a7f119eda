package catalog

import "github.com/AvalonLA/atelier/internal/domain"

// MockProducts is the static demo dataset used when use_mock_data is on
// or when the live catalog cannot be read. Mock ids are deliberately not
// well-formed store ids, so order lines built from them carry a null
// product reference.
var MockProducts = []domain.Product{
	{
		ID:              "mock-001",
		Name:            "Orbe Suspendido",
		Category:        domain.CategoryPendant,
		Description:     "Esfera de vidrio soplado con suspensión invisible.",
		LongDescription: "Una esfera de vidrio soplado a mano que flota sobre el espacio. Luz cálida difusa de 2700K con regulación integrada.",
		Price:           420,
		Stock:           12,
		Featured:        true,
		Visible:         true,
		Image:           "/static/catalog/orbe-01.webp",
		Gallery:         []string{"/static/catalog/orbe-01.webp", "/static/catalog/orbe-02.webp"},
		Tag:             "ORB-420",
		Specs: []domain.Spec{
			{Label: "Material", Value: "Vidrio soplado"},
			{Label: "Temperatura", Value: "2700K"},
		},
	},
	{
		ID:              "mock-002",
		Name:            "Columna Lumínica",
		Category:        domain.CategoryFloor,
		Description:     "Lámpara de pie monolítica en aluminio anodizado.",
		LongDescription: "Columna de 1.6m con difusor lineal de policarbonato opalino, regulable por gesto.",
		Price:           680,
		Stock:           6,
		Featured:        true,
		Visible:         true,
		Image:           "/static/catalog/columna-01.webp",
		Gallery:         []string{"/static/catalog/columna-01.webp"},
		Tag:             "COL-680",
		Specs: []domain.Spec{
			{Label: "Altura", Value: "160 cm"},
			{Label: "Material", Value: "Aluminio anodizado"},
		},
	},
	{
		ID:              "mock-003",
		Name:            "Faro de Mesa",
		Category:        domain.CategoryTable,
		Description:     "Luminaria de mesa con pantalla giratoria.",
		LongDescription: "Base de mármol negro y pantalla giratoria de latón cepillado para dirigir la luz.",
		Price:           295,
		Stock:           3,
		Visible:         true,
		Image:           "/static/catalog/faro-01.webp",
		Gallery:         []string{"/static/catalog/faro-01.webp"},
		Tag:             "FAR-295",
		Specs: []domain.Spec{
			{Label: "Base", Value: "Mármol negro"},
		},
	},
	{
		ID:              "mock-004",
		Name:            "Halo Inteligente",
		Category:        domain.CategoryTech,
		Description:     "Anillo LED con control por aplicación y escenas.",
		LongDescription: "Anillo de 45cm con LEDs direccionables, sincronización circadiana y control por app.",
		Price:           999,
		Stock:           20,
		Featured:        true,
		Visible:         true,
		Image:           "/static/catalog/halo-01.webp",
		Gallery:         []string{"/static/catalog/halo-01.webp", "/static/catalog/halo-02.webp"},
		Tag:             "HAL-999",
		Specs: []domain.Spec{
			{Label: "Conectividad", Value: "WiFi / BLE"},
			{Label: "Diámetro", Value: "45 cm"},
		},
	},
	{
		ID:          "mock-005",
		Name:        "Trazo Colgante",
		Category:    domain.CategoryPendant,
		Description: "Línea de luz suspendida para mesas largas.",
		Price:       540,
		Stock:       0,
		Visible:     false,
		Image:       "/static/catalog/trazo-01.webp",
		Gallery:     []string{"/static/catalog/trazo-01.webp"},
		Tag:         "TRZ-540",
	},
}
