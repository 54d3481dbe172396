package session

import (
	"encoding/json"

	"github.com/ironvein/blocksrv/internal/config"
	"github.com/ironvein/blocksrv/internal/text"
)

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusPlayers struct {
	Max    int32 `json:"max"`
	Online int32 `json:"online"`
}

type statusDoc struct {
	Version            statusVersion  `json:"version"`
	Players            statusPlayers  `json:"players"`
	Description        text.Component `json:"description"`
	EnforcesSecureChat bool           `json:"enforcesSecureChat"`
}

// buildStatusJSON renders a Status Response document. Favicon is left
// unset per spec.md §1's favicon-loading Non-goal.
func buildStatusJSON(cfg config.ServerConfig, onlineCount int32) (string, error) {
	doc := statusDoc{
		Version:            statusVersion{Name: cfg.ProtocolBrand, Protocol: cfg.ProtocolVersion},
		Players:            statusPlayers{Max: cfg.MaxPlayers, Online: onlineCount},
		Description:        text.Of(cfg.MOTD),
		EnforcesSecureChat: false,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
