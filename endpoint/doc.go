// Package endpoint describes API calls as immutable values.
//
// A Request names the path, method, parameters, cache policy and expected
// response shape of one call. Its CacheKey is a fingerprint that is stable
// across process runs:
//
//	"cached." + path with "/" replaced by "." + "." + xxhash64(parameters)
//
// for example cached.channels.staffpicks.videos.17241709254077376921 for a
// request without parameters.
package endpoint
