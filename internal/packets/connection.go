package packets

import (
	"github.com/google/uuid"

	"github.com/hytale-oss/gameserver/internal/codec"
)

// ClientType distinguishes the game client from the world editor at
// connect time.
type ClientType uint8

const (
	ClientTypeGame ClientType = iota
	ClientTypeEditor
)

var clientTypeCodec = codec.Enum[ClientType]{VariantCount: 2}

// HostAddress is a NUL-terminated hostname plus a little-endian port,
// used for referral targets handed off during Connect.
type HostAddress struct {
	Host string
	Port uint16
}

var hostAddressCodec = codec.NewStruct[HostAddress](
	codec.Field[HostAddress, string](codec.NulString{Max: 256}, "host",
		func(v *HostAddress) string { return v.Host },
		func(v *HostAddress, f string) { v.Host = f }),
	codec.Field[HostAddress, uint16](codec.U16, "port",
		func(v *HostAddress) uint16 { return v.Port },
		func(v *HostAddress, f uint16) { v.Port = f }),
)

// Connect is the first packet a client sends on its bidirectional
// stream: protocol compatibility info, identity, and optional referral
// details carried over from a prior server.
type Connect struct {
	ProtocolCRC         uint32
	ProtocolBuildNumber uint32
	ClientVersion       string
	ClientType          ClientType
	UUID                uuid.UUID
	Username            string
	IdentityToken       *string
	Language            string
	ReferralData        *[]byte
	ReferralSource      *HostAddress
}

var connectDescriptor = &Descriptor{
	Name:     "Connect",
	ID:       0,
	MaxSize:  38013,
	Category: CategoryConnection,
}

func (Connect) Descriptor() *Descriptor { return connectDescriptor }

var connectCodec = codec.NewStruct[Connect](
	codec.Field[Connect, uint32](codec.U32, "protocol_crc",
		func(v *Connect) uint32 { return v.ProtocolCRC },
		func(v *Connect, f uint32) { v.ProtocolCRC = f }),
	codec.Field[Connect, uint32](codec.U32, "protocol_build_number",
		func(v *Connect) uint32 { return v.ProtocolBuildNumber },
		func(v *Connect, f uint32) { v.ProtocolBuildNumber = f }),
	codec.Field[Connect, string](codec.FixedString{N: 20}, "client_version",
		func(v *Connect) string { return v.ClientVersion },
		func(v *Connect, f string) { v.ClientVersion = f }),
	codec.Field[Connect, ClientType](clientTypeCodec, "client_type",
		func(v *Connect) ClientType { return v.ClientType },
		func(v *Connect, f ClientType) { v.ClientType = f }),
	codec.Field[Connect, uuid.UUID](codec.UUID, "uuid",
		func(v *Connect) uuid.UUID { return v.UUID },
		func(v *Connect, f uuid.UUID) { v.UUID = f }),
	codec.Field[Connect, string](codec.VarString{Max: 16}, "username",
		func(v *Connect) string { return v.Username },
		func(v *Connect, f string) { v.Username = f }),
	codec.Field[Connect, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 8192}}, "identity_token",
		func(v *Connect) *string { return v.IdentityToken },
		func(v *Connect, f *string) { v.IdentityToken = f }),
	codec.Field[Connect, string](codec.VarString{Max: 16}, "language",
		func(v *Connect) string { return v.Language },
		func(v *Connect, f string) { v.Language = f }),
	codec.Field[Connect, *[]byte](codec.VariableNullable[[]byte]{Inner: codec.VarBytes{Max: 4096}}, "referral_data",
		func(v *Connect) *[]byte { return v.ReferralData },
		func(v *Connect, f *[]byte) { v.ReferralData = f }),
	codec.Field[Connect, *HostAddress](codec.VariableNullable[HostAddress]{Inner: hostAddressCodec}, "referral_source",
		func(v *Connect) *HostAddress { return v.ReferralSource },
		func(v *Connect, f *HostAddress) { v.ReferralSource = f }),
)

// DisconnectType distinguishes a clean disconnect from a client crash.
type DisconnectType uint8

const (
	DisconnectTypeDisconnect DisconnectType = iota
	DisconnectTypeCrash
)

var disconnectTypeCodec = codec.Enum[DisconnectType]{VariantCount: 2}

// Disconnect is sent by either side to end the session cleanly, with an
// optional human-readable reason.
type Disconnect struct {
	Reason *string
	Type   DisconnectType
}

var disconnectDescriptor = &Descriptor{
	Name:     "Disconnect",
	ID:       1,
	MaxSize:  16384007,
	Category: CategoryConnection,
}

func (Disconnect) Descriptor() *Descriptor { return disconnectDescriptor }

var disconnectCodec = codec.NewStruct[Disconnect](
	codec.Field[Disconnect, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 4096000}}, "reason",
		func(v *Disconnect) *string { return v.Reason },
		func(v *Disconnect, f *string) { v.Reason = f }),
	codec.Field[Disconnect, DisconnectType](disconnectTypeCodec, "type",
		func(v *Disconnect) DisconnectType { return v.Type },
		func(v *Disconnect, f DisconnectType) { v.Type = f }),
)

// RegisterConnection adds the CONNECTION category's packet types to r.
func RegisterConnection(r *Registry) {
	Register[Connect](r, connectDescriptor, connectCodec)
	Register[Disconnect](r, disconnectDescriptor, disconnectCodec)
}
