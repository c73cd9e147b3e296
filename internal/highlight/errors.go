package highlight

import "errors"

// ErrUnsupportedSource is returned when constructing an Engine against a
// forest whose backing source is not a live document. The engine needs
// edit notifications, which standalone trees cannot provide.
var ErrUnsupportedSource = errors.New("highlight: forest source is not a document")
