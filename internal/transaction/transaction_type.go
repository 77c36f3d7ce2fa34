package transaction

// Type is the closed set of event kinds a Transaction can carry. Every
// honest node must agree on this set and its wire tags, since the tag is
// serialised as part of the hashed payload.
type Type uint8

const (
	UserRegistered Type = iota
	UserEdited
	UserUnregistered

	OrgRegistered
	OrgEdited
	OrgUnregistered

	ProjectPosted
	ProjectEdited
	ProjectStatusChanged

	ProjectUpdateAdded
	ProjectUpdateEdited
	ProjectUpdateDeleted

	FundingCreated
	FundingFunded
	FundingDistributed

	PostCreated
	PostUpdated
	PostDeleted

	CommentAdded

	EventAdded
	EventEdited
	EventCancelled

	RsvpChanged
	VoteCast

	NodeAdded
	NodeRemoved
)

var typeNames = map[Type]string{
	UserRegistered:       "UserRegistered",
	UserEdited:           "UserEdited",
	UserUnregistered:     "UserUnregistered",
	OrgRegistered:        "OrgRegistered",
	OrgEdited:            "OrgEdited",
	OrgUnregistered:      "OrgUnregistered",
	ProjectPosted:        "ProjectPosted",
	ProjectEdited:        "ProjectEdited",
	ProjectStatusChanged: "ProjectStatusChanged",
	ProjectUpdateAdded:   "ProjectUpdateAdded",
	ProjectUpdateEdited:  "ProjectUpdateEdited",
	ProjectUpdateDeleted: "ProjectUpdateDeleted",
	FundingCreated:       "FundingCreated",
	FundingFunded:        "FundingFunded",
	FundingDistributed:   "FundingDistributed",
	PostCreated:          "PostCreated",
	PostUpdated:          "PostUpdated",
	PostDeleted:          "PostDeleted",
	CommentAdded:         "CommentAdded",
	EventAdded:           "EventAdded",
	EventEdited:          "EventEdited",
	EventCancelled:       "EventCancelled",
	RsvpChanged:          "RsvpChanged",
	VoteCast:             "VoteCast",
	NodeAdded:            "NodeAdded",
	NodeRemoved:          "NodeRemoved",
}

// String implements fmt.Stringer for logging.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t is one of the closed enumeration values.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}
