package config

// SessionConfig holds the websocket session layer's listen settings.
type SessionConfig struct {
	// Address the websocket server binds, e.g. ":8443".
	Address string `mapstructure:"address" validate:"required"`

	// ProtocolVersion is handed to the websocket server, which stores it but
	// does not compare it with anything a client sends; no session is
	// rejected on its version.
	ProtocolVersion string `mapstructure:"protocol_version" validate:"required"`
}
