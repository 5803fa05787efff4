package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/themizzi/shopflow/internal/browser"
)

// InterstitialPolicy decides how an interstitial that never shows up is treated
type InterstitialPolicy string

// Interstitial policies
const (
	// InterstitialsOptional tolerates a prompt or banner that does not appear in time.
	InterstitialsOptional InterstitialPolicy = "optional"
	// InterstitialsRequired fails the run when one does not appear in time.
	InterstitialsRequired InterstitialPolicy = "required"
)

// Scenario holds everything the scenario driver needs to run against one target
type Scenario struct {
	BaseURL       string        `yaml:"base_url"`
	SuccessPath   string        `yaml:"success_path"`
	Credentials   Credentials   `yaml:"credentials"`
	Order         OrderForm     `yaml:"order"`
	Selectors     Selectors     `yaml:"selectors"`
	Wait          WaitConfig    `yaml:"wait"`
	Interstitials Interstitials `yaml:"interstitials"`
	Browser       BrowserConfig `yaml:"browser"`
}

// Credentials of the account used to log in
type Credentials struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// OrderForm holds the values typed into the checkout form
type OrderForm struct {
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

// Selectors locate every control the scenario touches
type Selectors struct {
	NotificationDeny browser.Selector `yaml:"notification_deny"`
	CookieAccept     browser.Selector `yaml:"cookie_accept"`
	AccountHeader    browser.Selector `yaml:"account_header"`
	LoginLink        browser.Selector `yaml:"login_link"`
	Email            browser.Selector `yaml:"email"`
	Password         browser.Selector `yaml:"password"`
	LoginSubmit      browser.Selector `yaml:"login_submit"`
	AccountLink      browser.Selector `yaml:"account_link"`
	ProductTile      browser.Selector `yaml:"product_tile"`
	AddToCart        browser.Selector `yaml:"add_to_cart"`
	ViewCart         browser.Selector `yaml:"view_cart"`
	Phone            browser.Selector `yaml:"phone"`
	County           browser.Selector `yaml:"county"`
	Town             browser.Selector `yaml:"town"`
	Address          browser.Selector `yaml:"address"`
	Delivery         browser.Selector `yaml:"delivery"`
	Payment          browser.Selector `yaml:"payment"`
	SubmitOrder      browser.Selector `yaml:"submit_order"`
}

// WaitConfig configures the bounded poll waits
type WaitConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// Interstitials configures how the notification prompt and cookie banner are handled
type Interstitials struct {
	Policy  InterstitialPolicy `yaml:"policy"`
	Timeout time.Duration      `yaml:"timeout"`
}

// BrowserConfig configures the launched browser
type BrowserConfig struct {
	Headless       bool          `yaml:"headless"`
	Channel        string        `yaml:"channel"`
	SlowMo         time.Duration `yaml:"slow_mo"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	Install        bool          `yaml:"install"`
}

// DefaultScenario returns the configuration for the production shop
func DefaultScenario() Scenario {
	return Scenario{
		BaseURL:     "https://www.evomag.ro",
		SuccessPath: "/success",
		Order: OrderForm{
			Phone:   "0000000000",
			Address: "Test Address",
		},
		Selectors: DefaultSelectors(),
		Wait: WaitConfig{
			Timeout:  30 * time.Second,
			Interval: 2 * time.Second,
		},
		Interstitials: Interstitials{
			Policy:  InterstitialsOptional,
			Timeout: 10 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		},
	}
}

// DefaultSelectors returns the selectors matching the production shop's markup
func DefaultSelectors() Selectors {
	return Selectors{
		NotificationDeny: browser.XPath("//a[@class='pushinstruments_button_deny']"),
		CookieAccept:     browser.XPath("//button[@class='gdpr-btn btn-1']"),
		AccountHeader:    browser.XPath("//div[@class='account_header']"),
		LoginLink:        browser.XPath("//a[@class='BtnLoginHead']"),
		Email:            browser.ID("LoginClientForm_Email"),
		Password:         browser.ID("LoginClientForm_Password"),
		LoginSubmit:      browser.XPath("//div[@class='container_principal_dr']//input[@class='butn_form']"),
		AccountLink:      browser.XPath("//a[@href='/client/details']"),
		ProductTile:      browser.XPath("//div[@class='pl_items']//div[@class='pl_image']"),
		AddToCart:        browser.XPath("//a[@class='cart']"),
		ViewCart:         browser.XPath("//a[@class='nice_add_to_cart view-cart']"),
		Phone:            browser.ID("Client_Phone"),
		County:           browser.XPath("//select[@id='PartnerAddress_county']/option[2]"),
		Town:             browser.XPath("//select[@id='PartnerAddress_CityId']/option[2]"),
		Address:          browser.XPath("//textarea[@id='PartnerAddress_Address']"),
		Delivery:         browser.ID("SalesOrder_DeliveryTypeId_0"),
		Payment:          browser.XPath("//label[@for='SalesOrder[PaymentTypeId][0]']"),
		SubmitOrder:      browser.Name("sendOrder"),
	}
}

// scenarioEnv lists the settings that can be overridden from the environment.
// Unset variables leave the pointer nil.
type scenarioEnv struct {
	BaseURL             *string        `envconfig:"SHOPFLOW_BASE_URL"`
	SuccessPath         *string        `envconfig:"SHOPFLOW_SUCCESS_PATH"`
	Email               *string        `envconfig:"SHOPFLOW_EMAIL"`
	Password            *string        `envconfig:"SHOPFLOW_PASSWORD"`
	Phone               *string        `envconfig:"SHOPFLOW_PHONE"`
	Address             *string        `envconfig:"SHOPFLOW_ADDRESS"`
	WaitTimeout         *time.Duration `envconfig:"SHOPFLOW_WAIT_TIMEOUT"`
	WaitInterval        *time.Duration `envconfig:"SHOPFLOW_WAIT_INTERVAL"`
	InterstitialPolicy  *string        `envconfig:"SHOPFLOW_INTERSTITIALS"`
	InterstitialTimeout *time.Duration `envconfig:"SHOPFLOW_INTERSTITIAL_TIMEOUT"`
	Headless            *bool          `envconfig:"SHOPFLOW_HEADLESS"`
	Channel             *string        `envconfig:"SHOPFLOW_BROWSER_CHANNEL"`
	SlowMo              *time.Duration `envconfig:"SHOPFLOW_SLOW_MO"`
	Install             *bool          `envconfig:"SHOPFLOW_INSTALL_BROWSER"`
}

// LoadScenario builds the configuration from the defaults, the YAML file at
// path (if any) and SHOPFLOW_* environment variables, in that order.
func LoadScenario(path string) (Scenario, error) {
	cfg := DefaultScenario()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var env scenarioEnv
	if err := envconfig.Process("", &env); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}
	env.apply(&cfg)

	return cfg, nil
}

func (e scenarioEnv) apply(cfg *Scenario) {
	setString(&cfg.BaseURL, e.BaseURL)
	setString(&cfg.SuccessPath, e.SuccessPath)
	setString(&cfg.Credentials.Email, e.Email)
	setString(&cfg.Credentials.Password, e.Password)
	setString(&cfg.Order.Phone, e.Phone)
	setString(&cfg.Order.Address, e.Address)
	setString(&cfg.Browser.Channel, e.Channel)
	if e.InterstitialPolicy != nil {
		cfg.Interstitials.Policy = InterstitialPolicy(strings.ToLower(*e.InterstitialPolicy))
	}
	if e.WaitTimeout != nil {
		cfg.Wait.Timeout = *e.WaitTimeout
	}
	if e.WaitInterval != nil {
		cfg.Wait.Interval = *e.WaitInterval
	}
	if e.InterstitialTimeout != nil {
		cfg.Interstitials.Timeout = *e.InterstitialTimeout
	}
	if e.Headless != nil {
		cfg.Browser.Headless = *e.Headless
	}
	if e.SlowMo != nil {
		cfg.Browser.SlowMo = *e.SlowMo
	}
	if e.Install != nil {
		cfg.Browser.Install = *e.Install
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks that the configuration is complete
func (c Scenario) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("SHOPFLOW_BASE_URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL %q must be an absolute URL", c.BaseURL)
	}
	if c.Credentials.Email == "" {
		return fmt.Errorf("SHOPFLOW_EMAIL is required")
	}
	if c.Credentials.Password == "" {
		return fmt.Errorf("SHOPFLOW_PASSWORD is required")
	}
	if err := c.Selectors.validate(); err != nil {
		return err
	}
	if err := c.WaitFor(c.Wait.Timeout).Validate(); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if err := c.WaitFor(c.Interstitials.Timeout).Validate(); err != nil {
		return fmt.Errorf("interstitial wait: %w", err)
	}
	switch c.Interstitials.Policy {
	case InterstitialsOptional, InterstitialsRequired:
	default:
		return fmt.Errorf("interstitial policy must be %q or %q, got %q",
			InterstitialsOptional, InterstitialsRequired, c.Interstitials.Policy)
	}
	return nil
}

// WaitFor returns a bounded poll wait using the configured interval and the given timeout
func (c Scenario) WaitFor(timeout time.Duration) browser.Wait {
	return browser.Wait{
		Timeout:  timeout,
		Interval: c.Wait.Interval,
		Message:  "...",
	}
}

// SuccessURL is the location expected once an order is placed
func (c Scenario) SuccessURL() string {
	return strings.TrimRight(c.BaseURL, "/") + c.SuccessPath
}

// Redacted returns a copy safe to print
func (c Scenario) Redacted() Scenario {
	if c.Credentials.Password != "" {
		c.Credentials.Password = "********"
	}
	return c
}

func (s Selectors) validate() error {
	named := []struct {
		name string
		sel  browser.Selector
	}{
		{"notification_deny", s.NotificationDeny},
		{"cookie_accept", s.CookieAccept},
		{"account_header", s.AccountHeader},
		{"login_link", s.LoginLink},
		{"email", s.Email},
		{"password", s.Password},
		{"login_submit", s.LoginSubmit},
		{"account_link", s.AccountLink},
		{"product_tile", s.ProductTile},
		{"add_to_cart", s.AddToCart},
		{"view_cart", s.ViewCart},
		{"phone", s.Phone},
		{"county", s.County},
		{"town", s.Town},
		{"address", s.Address},
		{"delivery", s.Delivery},
		{"payment", s.Payment},
		{"submit_order", s.SubmitOrder},
	}
	for _, n := range named {
		if n.sel.IsZero() {
			return fmt.Errorf("selector %s is required", n.name)
		}
	}
	return nil
}
