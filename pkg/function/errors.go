package function

import "errors"

var (
	ErrPointerConversionTarget = errors.New("conversion already returns pointer to the type argument, do not provide a pointer")
	ErrConversionFailed        = errors.New("the given unstructured cannot be converted to the target concrete type")
	ErrUnknownKind             = errors.New("unable to determine the kind of an output object")
	ErrWriterIsCommitted       = errors.New("cannot add new items to a writer once its outputs have been read")
)
