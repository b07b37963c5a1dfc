package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownTag is returned when a tag name is not part of the enumeration.
	ErrUnknownTag = zerr.New("unknown tag")

	// ErrUnknownEndpoint is returned when a query or mutation name has not been registered.
	ErrUnknownEndpoint = zerr.New("unknown endpoint")

	// ErrDuplicateEndpoint is returned when an endpoint name is registered twice.
	ErrDuplicateEndpoint = zerr.New("endpoint already registered")

	// ErrInvalidEndpoint is returned when an endpoint definition is incomplete.
	ErrInvalidEndpoint = zerr.New("invalid endpoint definition")

	// ErrInvalidTransition is returned when a cache entry would skip the loading state.
	ErrInvalidTransition = zerr.New("invalid cache entry transition")

	// ErrArgsEncodeFailed is returned when query arguments cannot be canonically encoded.
	ErrArgsEncodeFailed = zerr.New("failed to encode query arguments")

	// ErrLayerClosed is returned when a closed data layer is used.
	ErrLayerClosed = zerr.New("data layer closed")

	// ErrSubscriptionClosed is returned when a released subscription is used.
	ErrSubscriptionClosed = zerr.New("subscription already released")

	// ErrUnexpectedResult is returned when a query result has an unexpected type.
	ErrUnexpectedResult = zerr.New("unexpected result type")

	// ErrUnknownFunction is returned by the document store for an unregistered function name.
	ErrUnknownFunction = zerr.New("unknown function")

	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = zerr.New("document not found")

	// ErrInvalidArgument is returned when a function argument is missing or malformed.
	ErrInvalidArgument = zerr.New("invalid argument")

	// ErrConflict is returned when a write would violate a uniqueness constraint.
	ErrConflict = zerr.New("conflicting document")

	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = zerr.New("cart is empty")

	// ErrOutOfStock is returned when an order line exceeds the available stock.
	ErrOutOfStock = zerr.New("insufficient stock")

	// ErrCouponUnusable is returned when a coupon is inactive, expired or unknown.
	ErrCouponUnusable = zerr.New("coupon cannot be redeemed")

	// ErrSnapshotReadFailed is returned when a table snapshot cannot be read.
	ErrSnapshotReadFailed = zerr.New("failed to read snapshot")

	// ErrSnapshotWriteFailed is returned when a table snapshot cannot be written.
	ErrSnapshotWriteFailed = zerr.New("failed to write snapshot")

	// ErrSnapshotDecodeFailed is returned when a snapshot cannot be decoded.
	ErrSnapshotDecodeFailed = zerr.New("failed to decode snapshot")

	// ErrSnapshotEncodeFailed is returned when a snapshot cannot be encoded.
	ErrSnapshotEncodeFailed = zerr.New("failed to encode snapshot")

	// ErrConfigReadFailed is returned when a config, dataset or scenario file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a config, dataset or scenario file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrStepAlreadyExists is returned when two scenario steps share a name.
	ErrStepAlreadyExists = zerr.New("step already exists")

	// ErrMissingDependency is returned when a step depends on an undefined step.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when scenario steps depend on each other in a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidStep is returned when a step is missing fields required by its kind.
	ErrInvalidStep = zerr.New("invalid step")

	// ErrExpectationFailed is returned when an expect step does not hold.
	ErrExpectationFailed = zerr.New("expectation failed")

	// ErrStepFailed is returned when a scenario step fails.
	ErrStepFailed = zerr.New("step failed")

	// ErrStepSkipped is returned for steps whose dependencies failed.
	ErrStepSkipped = zerr.New("step skipped")

	// ErrScenarioFailed is returned when any scenario step fails.
	ErrScenarioFailed = zerr.New("scenario failed")

	// ErrNoDataset is returned when watching without a configured dataset.
	ErrNoDataset = zerr.New("no dataset configured")

	// ErrGeocodeRequestFailed is returned when the geocoding API cannot be reached.
	ErrGeocodeRequestFailed = zerr.New("failed to make geocoding request")

	// ErrGeocodeParseFailed is returned when the geocoding API response cannot be parsed.
	ErrGeocodeParseFailed = zerr.New("failed to parse geocoding response")

	// ErrGeocodeCacheFailed is returned when the geocoding disk cache cannot be used.
	ErrGeocodeCacheFailed = zerr.New("failed to access geocoding cache")

	// ErrEmptyQuery is returned when geocoding an empty query.
	ErrEmptyQuery = zerr.New("empty geocoding query")
)
