// Package config defines the plain, in-memory configuration surface the
// core accepts from its driver, per spec.md §6 and SPEC_FULL.md §2: no
// file or environment parsing happens inside the core itself.
package config

import "github.com/ironvein/blocksrv/internal/registry"

// ServerConfig is constructed once by the (out-of-scope) driver and
// handed to internal/mcserver at startup.
type ServerConfig struct {
	BindAddress string

	ProtocolVersion int32
	ProtocolBrand   string

	ViewDistance       int32
	SimulationDistance int32
	EntityViewDistance int32

	CompressionThreshold int32 // negative disables compression entirely
	CompressionLevel     int

	// OnlineMode is accepted but, per REDESIGN FLAG 3, cannot actually be
	// turned on: the RSA key-exchange handshake that would authenticate
	// it against Mojang's session service is out of scope.
	OnlineMode bool

	WorldDirectory string

	Registries registry.Bundle

	MaxPlayers int32
	MOTD       string
}

// Default returns a ServerConfig suitable for local/offline-mode testing.
func Default() ServerConfig {
	return ServerConfig{
		BindAddress:          "0.0.0.0:25565",
		ProtocolVersion:      769,
		ProtocolBrand:        "blocksrv",
		ViewDistance:         10,
		SimulationDistance:   10,
		EntityViewDistance:   10,
		CompressionThreshold: 256,
		CompressionLevel:     6,
		OnlineMode:           false,
		WorldDirectory:       ".",
		Registries:           registry.Default(),
		MaxPlayers:           20,
		MOTD:                 "A blocksrv server",
	}
}
