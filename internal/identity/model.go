package identity

// Request is the inbound payload of the linked-accounts operation.
type Request struct {
	EntityID string `json:"EntityId"`
}

// GraphNode is one entity returned by the linked-account query.
type GraphNode struct {
	EntityID string               `json:"entityId"`
	Accounts *[]*AccountDescriptor `json:"accounts"`
}

// AccountDescriptor holds the fields selected by the
// ActiveDirectoryAccountDescriptor fragment. Other descriptor variants decode
// as an empty object, leaving both fields nil.
type AccountDescriptor struct {
	ObjectSID *string `json:"objectSid"`
	Domain    *string `json:"domain"`
}

// LinkedEntity is one output record. Nil fields serialize as JSON null.
type LinkedEntity struct {
	EntitySID *string `json:"EntitySid"`
	EntityID  string  `json:"EntityId"`
	Domain    *string `json:"Domain"`
}

// ResponseBody is the success body of the linked-accounts operation.
type ResponseBody struct {
	LinkedEntities []LinkedEntity `json:"linked_entities"`
}
