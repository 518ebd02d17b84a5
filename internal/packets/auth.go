package packets

import "github.com/hytale-oss/gameserver/internal/codec"

// AuthGrant carries the server-requested authorization grant and the
// server's own identity token back to the client.
type AuthGrant struct {
	AuthorizationGrant  *string
	ServerIdentityToken *string
}

var authGrantDescriptor = &Descriptor{
	Name:     "AuthGrant",
	ID:       11,
	MaxSize:  49171,
	Category: CategoryAuth,
}

func (AuthGrant) Descriptor() *Descriptor { return authGrantDescriptor }

var authGrantCodec = codec.NewStruct[AuthGrant](
	codec.Field[AuthGrant, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 4096}}, "authorization_grant",
		func(v *AuthGrant) *string { return v.AuthorizationGrant },
		func(v *AuthGrant, f *string) { v.AuthorizationGrant = f }),
	codec.Field[AuthGrant, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 8192}}, "server_identity_token",
		func(v *AuthGrant) *string { return v.ServerIdentityToken },
		func(v *AuthGrant, f *string) { v.ServerIdentityToken = f }),
)

// AuthToken carries the client's requested access token plus the
// server's authorization grant, relayed to the session service.
type AuthToken struct {
	AccessToken              *string
	ServerAuthorizationGrant *string
}

var authTokenDescriptor = &Descriptor{
	Name:     "AuthToken",
	ID:       12,
	MaxSize:  49171,
	Category: CategoryAuth,
}

func (AuthToken) Descriptor() *Descriptor { return authTokenDescriptor }

var authTokenCodec = codec.NewStruct[AuthToken](
	codec.Field[AuthToken, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 8192}}, "access_token",
		func(v *AuthToken) *string { return v.AccessToken },
		func(v *AuthToken, f *string) { v.AccessToken = f }),
	codec.Field[AuthToken, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 4096}}, "server_authorization_grant",
		func(v *AuthToken) *string { return v.ServerAuthorizationGrant },
		func(v *AuthToken, f *string) { v.ServerAuthorizationGrant = f }),
)

// ServerAuthToken carries the server's access token and an optional
// password challenge for legacy clients back to the peer.
type ServerAuthToken struct {
	ServerAccessToken *string
	PasswordChallenge *string
}

var serverAuthTokenDescriptor = &Descriptor{
	Name:     "ServerAuthToken",
	ID:       13,
	MaxSize:  32851,
	Category: CategoryAuth,
}

func (ServerAuthToken) Descriptor() *Descriptor { return serverAuthTokenDescriptor }

var serverAuthTokenCodec = codec.NewStruct[ServerAuthToken](
	codec.Field[ServerAuthToken, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 8192}}, "server_access_token",
		func(v *ServerAuthToken) *string { return v.ServerAccessToken },
		func(v *ServerAuthToken, f *string) { v.ServerAccessToken = f }),
	codec.Field[ServerAuthToken, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 64}}, "password_challenge",
		func(v *ServerAuthToken) *string { return v.PasswordChallenge },
		func(v *ServerAuthToken, f *string) { v.PasswordChallenge = f }),
)

// ConnectAccept finalizes the AUTH handshake with a raw password
// challenge, sent in place of ServerAuthToken for clients using the
// legacy password-challenge path.
type ConnectAccept struct {
	PasswordChallenge *[]byte
}

var connectAcceptDescriptor = &Descriptor{
	Name:     "ConnectAccept",
	ID:       14,
	MaxSize:  68,
	Category: CategoryAuth,
}

func (ConnectAccept) Descriptor() *Descriptor { return connectAcceptDescriptor }

var connectAcceptCodec = codec.NewStruct[ConnectAccept](
	codec.Field[ConnectAccept, *[]byte](codec.VariableNullable[[]byte]{Inner: codec.VarBytes{Max: 64}}, "password_challenge",
		func(v *ConnectAccept) *[]byte { return v.PasswordChallenge },
		func(v *ConnectAccept, f *[]byte) { v.PasswordChallenge = f }),
)

// RegisterAuth adds the AUTH category's packet types to r.
func RegisterAuth(r *Registry) {
	Register[AuthGrant](r, authGrantDescriptor, authGrantCodec)
	Register[AuthToken](r, authTokenDescriptor, authTokenCodec)
	Register[ServerAuthToken](r, serverAuthTokenDescriptor, serverAuthTokenCodec)
	Register[ConnectAccept](r, connectAcceptDescriptor, connectAcceptCodec)
}
