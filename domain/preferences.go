package domain

// Preferences holds the locally remembered delivery settings.
type Preferences struct {
	WhatsApp         string `json:"whatsapp,omitempty"`
	RememberWhatsApp bool   `json:"rememberWhatsapp"`
}
