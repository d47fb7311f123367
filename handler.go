package aior

import "context"

// Void is used as the request type of an operation that binds nothing.
type Void struct{}

// Handler is the typed operation signature. Req is Void or a struct whose
// fields are Body, Query, Header or Path markers; every marker is bound and
// validated before the handler runs.
type Handler[Req any] func(ctx context.Context, req *Req) (Response, error)
