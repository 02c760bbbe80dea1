package pagination

// Cursor holds the tokens identifying the segments adjacent to a CursorPage.
// A nil token means no page exists in that direction.
type Cursor struct {
	After  *string `json:"after"`
	Before *string `json:"before"`
}

// Endpoint resolves the path a CursorPage is re-requested against.
// Implementations must return the same value for the lifetime of a page.
type Endpoint interface {
	EndpointURL() string
}

// Path is an Endpoint backed by a fixed request path, e.g. "/v1/me/player/recently-played".
type Path string

// EndpointURL implements Endpoint.
func (p Path) EndpointURL() string {
	return string(p)
}
