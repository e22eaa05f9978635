package person

import (
	"errors"
	"time"
)

var (
	ErrEmptyPartyID  = errors.New("responsible party id cannot be empty")
	ErrEmptyPersonID = errors.New("person id cannot be empty")
)

// Mapping links a responsible-party identifier, as recorded on expense
// transactions, to the canonical owner of a debt account. It is operator
// maintained configuration data, the single source of truth for
// attribution. No code path is allowed to default-guess a person when a
// mapping is missing.
type Mapping struct {
	ResponsiblePartyID string    `json:"responsible_party_id"`
	PersonID           string    `json:"person_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewMapping creates a mapping from a responsible party to a person
func NewMapping(responsiblePartyID, personID string) (*Mapping, error) {
	if responsiblePartyID == "" {
		return nil, ErrEmptyPartyID
	}
	if personID == "" {
		return nil, ErrEmptyPersonID
	}

	return &Mapping{
		ResponsiblePartyID: responsiblePartyID,
		PersonID:           personID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}, nil
}

// ErrUnmappedParty indicates no mapping exists for a responsible party.
// Callers must surface this instead of attributing the debt to a default
// person.
type ErrUnmappedParty struct {
	ResponsiblePartyID string
}

func (e ErrUnmappedParty) Error() string {
	return "no person mapping for responsible party: " + e.ResponsiblePartyID
}

// Is matches any ErrUnmappedParty when the target carries an empty party id
func (e ErrUnmappedParty) Is(target error) bool {
	t, ok := target.(ErrUnmappedParty)
	if !ok {
		return false
	}
	return t.ResponsiblePartyID == "" || e.ResponsiblePartyID == t.ResponsiblePartyID
}
