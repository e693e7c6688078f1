// Package gravatar builds profile picture URLs for users and emergency contacts.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jon4hz/safebadge/internal/config"
	"github.com/samber/lo"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	validDefaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	validRatings       = []string{"g", "pg", "r", "x"}
)

// Generator creates Gravatar URLs. A nil or disabled Generator returns empty URLs.
type Generator struct {
	cfg    *config.GravatarConfig
	params string
}

// New validates the configuration and returns a Generator.
// Invalid options are rejected so a typo does not silently produce broken images.
func New(cfg *config.GravatarConfig) (*Generator, error) {
	if cfg == nil || !cfg.Enabled {
		return &Generator{}, nil
	}
	if cfg.DefaultImage != "" && !lo.Contains(validDefaultImages, cfg.DefaultImage) {
		return nil, fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !lo.Contains(validRatings, cfg.Rating) {
		return nil, fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return nil, fmt.Errorf("gravatar size must be between 1 and 2048, got %d", cfg.Size)
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}

	return &Generator{cfg: cfg, params: params.Encode()}, nil
}

// Enabled reports whether URLs are generated at all.
func (g *Generator) Enabled() bool {
	return g != nil && g.cfg != nil && g.cfg.Enabled
}

// URL returns the avatar URL for an email address, or "" when disabled or the email is empty.
func (g *Generator) URL(email string) string {
	if !g.Enabled() {
		return ""
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if g.params != "" {
		u += "?" + g.params
	}
	return u
}

// URLPtr is URL for optional email fields.
func (g *Generator) URLPtr(email *string) string {
	if email == nil {
		return ""
	}
	return g.URL(*email)
}
