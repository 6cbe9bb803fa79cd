package wkt

// Empty is returned by methods that have no response payload, such as deletes.
type Empty struct{}
