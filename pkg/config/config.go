package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Store holds the document store connection settings.
type Store struct {
	// URI is the MongoDB connection string. Required.
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// Mail holds the SMTP relay settings. The relay is used for both the
// submitter acknowledgment and the operator alert.
type Mail struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	// SenderAddress is the From address. Defaults to User when empty.
	SenderAddress string `yaml:"senderAddress"`
	SenderName    string `yaml:"senderName"`
	// OperatorAddress receives the internal alert for every submission.
	// Defaults to User when empty.
	OperatorAddress    string `yaml:"operatorAddress"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
}

// Zoho holds the CRM credentials. All three credentials are optional as a
// set: when any is missing, CRM sync degrades to always-failure instead of
// preventing startup.
type Zoho struct {
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	RefreshToken string `yaml:"refreshToken"`
	AccountsURL  string `yaml:"accountsURL"`
	CRMAPIURL    string `yaml:"crmAPIURL"`
}

// Enabled reports whether the credential set is complete enough to attempt
// token refresh and lead creation.
func (z Zoho) Enabled() bool {
	return z.ClientID != "" && z.ClientSecret != "" && z.RefreshToken != ""
}

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TrustedProxies []string `yaml:"trustedProxies"`
}

type Config struct {
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
	Mail   Mail   `yaml:"mail"`
	Zoho   Zoho   `yaml:"zoho"`
}

const (
	defaultAccountsURL = "https://accounts.zoho.in"
	defaultCRMAPIURL   = "https://www.zohoapis.in"
)

// Load loads the service configuration from a file path.
// If configPath is empty, defaults to "./config.yaml"; the path can also be
// overridden via the CONTACT_CONFIG_PATH environment variable. Secrets may be
// supplied or overridden through environment variables (MONGODB_URI, SMTP_*,
// ZOHO_*) so deployments can keep them out of the config file.
func Load(configPath ...string) (Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if env := os.Getenv("CONTACT_CONFIG_PATH"); env != "" {
		path = env
	} else {
		path = "./config.yaml"
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open contact service config file %s: %v", path, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %v", path, err)
	}

	config.applyEnvOverrides()
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) applyEnvOverrides() {
	overrideString(&c.Store.URI, "MONGODB_URI")
	overrideString(&c.Mail.Host, "SMTP_HOST")
	overrideString(&c.Mail.User, "SMTP_MAIL")
	overrideString(&c.Mail.Password, "SMTP_PASS")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Mail.Port = port
		}
	}
	overrideString(&c.Zoho.ClientID, "ZOHO_CLIENT_ID")
	overrideString(&c.Zoho.ClientSecret, "ZOHO_CLIENT_SECRET")
	overrideString(&c.Zoho.RefreshToken, "ZOHO_REFRESH_TOKEN")
	overrideString(&c.Zoho.AccountsURL, "ZOHO_ACCOUNTS_URL")
	overrideString(&c.Zoho.CRMAPIURL, "ZOHO_CRM_API_URL")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Store.Database == "" {
		c.Store.Database = "azalea"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "contacts"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
	if c.Mail.SenderAddress == "" {
		c.Mail.SenderAddress = c.Mail.User
	}
	if c.Mail.OperatorAddress == "" {
		c.Mail.OperatorAddress = c.Mail.User
	}
	if c.Zoho.AccountsURL == "" {
		c.Zoho.AccountsURL = defaultAccountsURL
	}
	if c.Zoho.CRMAPIURL == "" {
		c.Zoho.CRMAPIURL = defaultCRMAPIURL
	}
}

// validate checks the settings the service cannot start without. Zoho
// credentials are deliberately not on this list.
func (c *Config) validate() error {
	var missing []string
	if c.Store.URI == "" {
		missing = append(missing, "store.uri (MONGODB_URI)")
	}
	if c.Mail.Host == "" {
		missing = append(missing, "mail.host (SMTP_HOST)")
	}
	if c.Mail.User == "" {
		missing = append(missing, "mail.user (SMTP_MAIL)")
	}
	if c.Mail.Password == "" {
		missing = append(missing, "mail.password (SMTP_PASS)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	return nil
}
