package endpoint

import (
	"strconv"
	"strings"

	"github.com/kbukum/vimeonet/auth"
	"github.com/kbukum/vimeonet/params"
)

const (
	pathAppleToken = "/oauth/authorize/apple"
	pathUsers      = "/users"
)

// LogInWithApple builds the token exchange for a Sign in with Apple credential.
// The response decodes into an auth.Account.
func LogInWithApple(userIdentifier, token string, scopes ...auth.Scope) Request {
	return New(pathAppleToken,
		WithMethod(POST),
		WithParameters(params.Object(
			params.P("grant_type", params.String("apple")),
			params.P("scope", params.String(auth.CombineScopes(scopes...))),
			params.P("apple_user_identifier", params.String(userIdentifier)),
			params.P("apple_jwt", params.String(token)),
		)),
	)
}

// JoinWithApple builds the account creation call for a Sign in with Apple credential.
func JoinWithApple(userIdentifier, token string, marketingOptIn bool, scopes ...auth.Scope) Request {
	return New(pathUsers,
		WithMethod(POST),
		WithParameters(params.Object(
			params.P("scope", params.String(auth.CombineScopes(scopes...))),
			params.P("apple_user_identifier", params.String(userIdentifier)),
			params.P("apple_jwt", params.String(token)),
			params.P("marketing_opt_in", params.Bool(marketingOptIn)),
		)),
	)
}

// TeamMembers lists the members of a team. hasAccessOnly narrows the result
// to members added to the folder; fields filters the returned fields. Nil
// and empty arguments are omitted.
func TeamMembers(uri string, hasAccessOnly *bool, fields string) Request {
	var pairs []string
	if hasAccessOnly != nil {
		pairs = append(pairs, "has_access_only="+strconv.FormatBool(*hasAccessOnly))
	}
	if fields != "" {
		pairs = append(pairs, "fields="+fields)
	}
	path := uri
	if len(pairs) > 0 {
		path += "?" + strings.Join(pairs, "&")
	}
	return New(path, WithModelKeyPath("data"))
}

// BatchTarget names the collection kind receiving a batch operation.
type BatchTarget int

const (
	// BatchAlbum adds with "add" and removes with "remove".
	BatchAlbum BatchTarget = iota
	// BatchVideo adds with "set" and removes with "remove".
	BatchVideo
)

func (t BatchTarget) addKey() string {
	if t == BatchVideo {
		return "set"
	}
	return "add"
}

// Batch builds a PATCH that adds and removes items, addressed by URI, from
// the collection at path in a single call.
func Batch(path string, target BatchTarget, add, remove []string) Request {
	p := params.NewMap()
	if len(add) > 0 {
		p.Set(target.addKey(), uriList(add))
	}
	if len(remove) > 0 {
		p.Set("remove", uriList(remove))
	}
	return New(path,
		WithMethod(PATCH),
		WithParameters(params.FromMap(p)),
		WithEncoding(params.JSONEncoding{}),
		WithShape(ShapeNone),
	)
}

func uriList(uris []string) params.Value {
	items := make([]params.Value, len(uris))
	for i, uri := range uris {
		items[i] = params.Object(params.P("uri", params.String(uri)))
	}
	return params.Array(items...)
}
