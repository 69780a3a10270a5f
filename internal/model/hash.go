package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
const (
	DomainNotification = "sloimpact/notification/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies what a notification is about: the violated rule and
// the path its chain took. Two notifications from separate calculations with
// the same rule and path share a fingerprint even though they are distinct
// values with distinct ledger IDs.
func (n *Notification) Fingerprint() (string, error) {
	if n.RootCause == nil || n.RootCause.Rule == nil || n.TopLevelImpact == nil {
		return "", fmt.Errorf("fingerprint: incomplete notification")
	}
	path := n.TopLevelImpact.Path()
	locs := make([]string, len(path))
	for i, loc := range path {
		locs[i] = loc.String()
	}
	canonical, err := MarshalCanonical(map[string]any{
		"rule":     n.RootCause.Rule.ID,
		"location": n.TopLevelImpact.Location.String(),
		"path":     locs,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainNotification, canonical), nil
}
