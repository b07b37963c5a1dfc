package tagcache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// cacheKey identifies a query invocation by endpoint name and arguments.
// Arguments are digested with xxhash over their canonical JSON encoding, so maps with
// equal contents yield equal keys regardless of insertion order.
func cacheKey(name string, args domain.Args) (string, error) {
	data, err := args.Canonical()
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrArgsEncodeFailed.Error()), "query", name)
	}
	return fmt.Sprintf("%s#%016x", name, xxhash.Sum64(data)), nil
}
