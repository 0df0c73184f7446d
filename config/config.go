package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del seller.
type Config struct {
	Steam   SteamConfig   `yaml:"steam"`
	Filters FiltersConfig `yaml:"filters"`
	Pricing PricingConfig `yaml:"pricing"`
	Seller  SellerConfig  `yaml:"seller"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SteamConfig contiene credenciales y destino del inventario.
type SteamConfig struct {
	BaseURL     string `yaml:"base_url"`
	LoginSecure string `yaml:"login_secure"` // cookie steamLoginSecure; mejor vía .env
	SteamID     string `yaml:"steam_id"`     // steamID64, 17 dígitos
	AppID       int    `yaml:"app_id"`       // 753 = Steam community items
	ContextID   string `yaml:"context_id"`   // "6" = community context
	Language    string `yaml:"language"`
}

// ClassGateConfig filtra por códigos de clase. Deshabilitada siempre pasa.
type ClassGateConfig struct {
	Enabled bool  `yaml:"enabled"`
	Values  []int `yaml:"values"`
}

// DetailGateConfig filtra por el tipo detallado. Deshabilitada siempre pasa.
type DetailGateConfig struct {
	Enabled bool     `yaml:"enabled"`
	Values  []string `yaml:"values"`
}

// FiltersConfig son las cuatro puertas independientes de tipo.
type FiltersConfig struct {
	AllowClasses ClassGateConfig  `yaml:"allow_classes"`
	DenyClasses  ClassGateConfig  `yaml:"deny_classes"`
	AllowDetails DetailGateConfig `yaml:"allow_details"`
	DenyDetails  DetailGateConfig `yaml:"deny_details"`
}

// BoundsConfig es un rango de precio inclusivo; un límite ausente queda
// abierto.
type BoundsConfig struct {
	Lowest  *float64 `yaml:"lowest"`
	Highest *float64 `yaml:"highest"`
}

// PricingConfig controla la fórmula y las puertas de liquidez y precio.
type PricingConfig struct {
	Formula         string `yaml:"formula"`
	LeastSellsHours int    `yaml:"least_sells_hours"` // ventana de historia a mirar
	HoursLeastSells int    `yaml:"hours_least_sells"` // ventas mínimas en la ventana
	LeastSellOrders int    `yaml:"least_sell_orders"`
	LeastBuyOrders  int    `yaml:"least_buy_orders"`

	Global     BoundsConfig `yaml:"global"`
	NormalCard BoundsConfig `yaml:"normal_card"`
	FoilCard   BoundsConfig `yaml:"foil_card"`
	OtherItem  BoundsConfig `yaml:"other_item"`
}

// SellerConfig controla el comportamiento del orquestador.
type SellerConfig struct {
	Workers int  `yaml:"workers"` // goroutines de pricing (0 = NumCPU*2)
	DryRun  bool `yaml:"dry_run"`
}

// StorageConfig controla dónde se persiste el journal de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STEAM_LOGIN_SECURE"); v != "" {
		cfg.Steam.LoginSecure = v
	}
	if v := os.Getenv("STEAM_ID"); v != "" {
		cfg.Steam.SteamID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Steam.BaseURL == "" {
		cfg.Steam.BaseURL = "https://steamcommunity.com"
	}
	if cfg.Steam.AppID <= 0 {
		cfg.Steam.AppID = 753
	}
	if cfg.Steam.ContextID == "" {
		cfg.Steam.ContextID = "6"
	}
	if cfg.Steam.Language == "" {
		cfg.Steam.Language = "english"
	}
	if cfg.Pricing.LeastSellsHours <= 0 {
		cfg.Pricing.LeastSellsHours = 36
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "steamseller.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate comprueba que la configuración es usable antes de arrancar.
func (c *Config) Validate() error {
	if c.Steam.LoginSecure == "" {
		return fmt.Errorf("config.Validate: steam.login_secure is required (or STEAM_LOGIN_SECURE)")
	}
	if err := validateSteamID(c.Steam.SteamID); err != nil {
		return err
	}
	if c.Pricing.Formula == "" {
		return fmt.Errorf("config.Validate: pricing.formula is required")
	}
	if c.Pricing.HoursLeastSells < 0 || c.Pricing.LeastSellOrders < 0 || c.Pricing.LeastBuyOrders < 0 {
		return fmt.Errorf("config.Validate: pricing thresholds must be non-negative")
	}
	for name, b := range map[string]BoundsConfig{
		"global":      c.Pricing.Global,
		"normal_card": c.Pricing.NormalCard,
		"foil_card":   c.Pricing.FoilCard,
		"other_item":  c.Pricing.OtherItem,
	} {
		if b.Lowest != nil && b.Highest != nil && *b.Highest < *b.Lowest {
			return fmt.Errorf("config.Validate: pricing.%s: highest %.2f < lowest %.2f", name, *b.Highest, *b.Lowest)
		}
	}
	if c.Seller.Workers < 0 {
		return fmt.Errorf("config.Validate: seller.workers must be non-negative")
	}
	return nil
}

// validateSteamID comprueba el formato steamID64: exactamente 17 dígitos.
func validateSteamID(id string) error {
	if len(id) != 17 {
		return fmt.Errorf("config.Validate: steam.steam_id must be a 17-digit steamID64, got %q", id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("config.Validate: steam.steam_id must be numeric, got %q", id)
		}
	}
	return nil
}
