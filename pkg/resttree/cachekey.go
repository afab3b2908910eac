package resttree

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// cacheKey derives the memoization key for one verb call. The key is a
// canonical string of the verb tag, the identity of the calling object
// (a client's base URL and auth tag, or an endpoint's effective path),
// the route, and every option rendered as sorted "key=value" pairs, so
// the order in which a caller supplies headers or params never changes
// the key.
func cacheKey(method Method, owner, route string, options *requestOptions) string {
	var builder strings.Builder

	builder.WriteString(string(method))
	builder.WriteByte('|')
	builder.WriteString(owner)
	builder.WriteByte('|')
	builder.WriteString(route)

	if options != nil {
		writeSortedPairs(&builder, "param", options.params)
		writeSortedPairs(&builder, "header", options.headers)

		if len(options.body) > 0 {
			hash := fnv.New64a()
			_, _ = hash.Write(options.body)

			builder.WriteString("|body=")
			builder.WriteString(strconv.FormatUint(hash.Sum64(), 16))
		}
	}

	return builder.String()
}

func writeSortedPairs(builder *strings.Builder, tag string, values map[string]string) {
	if len(values) == 0 {
		return
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		builder.WriteByte('|')
		builder.WriteString(tag)
		builder.WriteByte(':')
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(values[key])
	}
}
