// Package params models request parameters as a tagged union and encodes
// them onto HTTP requests.
//
// A parameter tree is a Value: Null, Bool, Number, String, Array or Map.
// Maps keep insertion order so that nested keys are emitted exactly as they
// were built; only the top level is sorted during encoding.
//
// URLEncoding routes GET, HEAD and DELETE parameters into the query string
// and every other method into a form-url-encoded body:
//
//	p := params.Object(
//		params.P("fields", params.String("uri,name")),
//		params.P("filter", params.Object(params.P("type", params.String("live")))),
//	)
//	req, err := params.URLEncoding{}.Encode(httpReq, p)
//	// GET /videos?fields=uri%2Cname&filter%5Btype%5D=live
package params
