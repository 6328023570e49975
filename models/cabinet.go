package models

// CabinetConfig is the single configuration record of the clinic. It is
// updated in place and never recreated.
type CabinetConfig struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Website  string `json:"website,omitempty"`
	Logo     string `json:"logo,omitempty"` // data URL
	Currency string `json:"currency"`

	InvoiceSettings  InvoiceSettings  `json:"invoiceSettings"`
	ReminderSettings ReminderSettings `json:"reminderSettings"`
}

type InvoiceSettings struct {
	Prefix       string  `json:"prefix"`
	TaxRate      float64 `json:"taxRate"`
	Footer       string  `json:"footer,omitempty"`
	PaymentTerms string  `json:"paymentTerms,omitempty"`
}

type ReminderSettings struct {
	Enabled     bool         `json:"enabled"`
	HoursBefore int          `json:"hoursBefore"`
	Channel     ReminderType `json:"channel"`
	Message     string       `json:"message,omitempty"`
}

// DefaultInvoicePrefix applies when the configured prefix is empty.
const DefaultInvoicePrefix = "FAC"

func DefaultCabinetConfig() CabinetConfig {
	return CabinetConfig{
		Name:     "Cabinet Médical",
		Address:  "12 Boulevard Mohammed V",
		City:     "Casablanca",
		Phone:    "+212522000000",
		Email:    "contact@cabinet.ma",
		Currency: "MAD",
		InvoiceSettings: InvoiceSettings{
			Prefix:       DefaultInvoicePrefix,
			TaxRate:      0,
			PaymentTerms: "Paiement à réception",
		},
		ReminderSettings: ReminderSettings{
			Enabled:     true,
			HoursBefore: 24,
			Channel:     ReminderWhatsApp,
			Message:     DefaultReminderMessage,
		},
	}
}

func (c CabinetConfig) InvoicePrefix() string {
	if c.InvoiceSettings.Prefix == "" {
		return DefaultInvoicePrefix
	}
	return c.InvoiceSettings.Prefix
}

// CabinetConfigUpdate holds the fields to change; nil means unchanged
type CabinetConfigUpdate struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Website  *string `json:"website"`
	Logo     *string `json:"logo"`
	Currency *string `json:"currency"`

	InvoiceSettings  *InvoiceSettings  `json:"invoiceSettings"`
	ReminderSettings *ReminderSettings `json:"reminderSettings"`
}

func (u CabinetConfigUpdate) Apply(c *CabinetConfig) {
	setString(&c.Name, u.Name)
	setString(&c.Address, u.Address)
	setString(&c.City, u.City)
	setString(&c.Phone, u.Phone)
	setString(&c.Email, u.Email)
	setString(&c.Website, u.Website)
	setString(&c.Logo, u.Logo)
	setString(&c.Currency, u.Currency)
	if u.InvoiceSettings != nil {
		c.InvoiceSettings = *u.InvoiceSettings
	}
	if u.ReminderSettings != nil {
		c.ReminderSettings = *u.ReminderSettings
	}
}
