package linkpub

import (
	"net/url"
	"sync"

	"github.com/google/uuid"
)

// DefaultConsumerGUID identifies this consumer build to the dispenser.
const DefaultConsumerGUID = "91734bd4-dd94-498d-808a-d05235c853f9"

// Identity describes who is asking the dispenser for links.
//
// ConsumerGUID is fixed per consumer build. SiteGUID identifies one
// installation and may be assigned once, before the first fetch.
// InstanceGUID identifies a single placement and takes precedence over the
// site/consumer pair when building a request.
type Identity struct {
	mu           sync.Mutex
	consumerGUID string
	siteGUID     string
	instanceGUID string
	sealed       bool
}

// NewIdentity returns an identity for the given consumer GUID.
// Returns EINVALID if consumerGUID is not GUID-formatted.
func NewIdentity(consumerGUID, siteGUID, instanceGUID string) (*Identity, error) {
	if err := ValidateGUID(consumerGUID); err != nil {
		return nil, err
	}
	return &Identity{
		consumerGUID: consumerGUID,
		siteGUID:     siteGUID,
		instanceGUID: instanceGUID,
	}, nil
}

// ConsumerGUID returns the consumer build identifier.
func (id *Identity) ConsumerGUID() string { return id.consumerGUID }

// InstanceGUID returns the placement identifier, or "" if none.
func (id *Identity) InstanceGUID() string { return id.instanceGUID }

// SiteGUID returns the installation identifier, or "" if none.
func (id *Identity) SiteGUID() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.siteGUID
}

// SetSiteGUID assigns the installation identifier.
// Returns ECONFLICT if a site GUID is already set or a fetch has been made.
func (id *Identity) SetSiteGUID(siteGUID string) error {
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.sealed {
		return Errorf(ECONFLICT, "site GUID cannot change after the first fetch")
	}
	if id.siteGUID != "" {
		return Errorf(ECONFLICT, "site GUID already set")
	}
	id.siteGUID = siteGUID
	return nil
}

// QueryPath returns the request path for the dispenser and freezes the
// identity against further changes.
func (id *Identity) QueryPath() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	id.sealed = true

	switch {
	case id.instanceGUID != "":
		return "/?guid=" + url.QueryEscape(id.instanceGUID)
	case id.siteGUID != "":
		return "/?site_guid=" + url.QueryEscape(id.siteGUID) +
			"&consumer_guid=" + url.QueryEscape(id.consumerGUID)
	default:
		return "/"
	}
}

// ValidateGUID returns EINVALID unless s is a canonical 36-character GUID
// (hex digits in 8-4-4-4-12 groups, any case).
func ValidateGUID(s string) error {
	// uuid.Parse also accepts braced and urn forms.
	if len(s) != 36 {
		return Errorf(EINVALID, "invalid GUID %q", s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return Errorf(EINVALID, "invalid GUID %q", s)
	}
	return nil
}
