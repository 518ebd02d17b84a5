package frame_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/hytale-oss/gameserver/internal/frame"
	"github.com/hytale-oss/gameserver/internal/packets"
)

func newCodecPair(t *testing.T, allowed packets.Category) (*frame.Encoder, *frame.Decoder, *packets.Registry) {
	t.Helper()
	reg := packets.NewDefaultRegistry()
	enc, err := frame.NewEncoder(reg)
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}
	t.Cleanup(func() { _ = enc.Close() })
	dec, err := frame.NewDecoder(reg, allowed)
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	t.Cleanup(dec.Close)
	return enc, dec, reg
}

// TestConnectAcceptFramedHeader reproduces spec.md §8 scenario 1's framed
// header: length 66, identifier 14, little-endian.
func TestConnectAcceptFramedHeader(t *testing.T) {
	t.Parallel()

	enc, dec, _ := newCodecPair(t, packets.CategoryAuth)
	challenge := make([]byte, 64)
	out, err := enc.Encode(packets.ConnectAccept{PasswordChallenge: &challenge})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantHeader := []byte{0x42, 0x00, 0x00, 0x00, 0x0E, 0x00, 0x00, 0x00}
	if len(out) < 8 || !equal(out[:8], wantHeader) {
		t.Fatalf("header = % x, want % x", out[:8], wantHeader)
	}

	dec.Feed(out)
	pkt, ok, err := dec.Next()
	if err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if _, isType := pkt.(packets.ConnectAccept); !isType {
		t.Fatalf("decoded %T, want ConnectAccept", pkt)
	}
}

func TestAuthGrantFramedHeader(t *testing.T) {
	t.Parallel()

	enc, _, _ := newCodecPair(t, packets.CategoryAuth)
	out, err := enc.Encode(packets.AuthGrant{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantHeader := []byte{0x01, 0x00, 0x00, 0x00, 0x0B, 0x00, 0x00, 0x00}
	if !equal(out[:8], wantHeader) {
		t.Fatalf("header = % x, want % x", out[:8], wantHeader)
	}
}

// TestCategoryGateRejectsOutOfPhasePacket reproduces spec.md §8 scenario 3:
// Connect (category CONNECTION) arrives while the filter is AUTH|SETUP.
func TestCategoryGateRejectsOutOfPhasePacket(t *testing.T) {
	t.Parallel()

	enc, dec, _ := newCodecPair(t, packets.CategoryAuth|packets.CategorySetup)
	out, err := enc.Encode(packets.Connect{ClientVersion: "x", Username: "u", Language: "en"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec.Feed(out)
	_, _, err = dec.Next()
	if !errors.Is(err, frame.ErrCategoryDenied) {
		t.Fatalf("err = %v, want ErrCategoryDenied", err)
	}
}

func TestDecoderRequestsMoreBytesOnPartialFrame(t *testing.T) {
	t.Parallel()

	enc, dec, _ := newCodecPair(t, packets.CategoryAuth)
	out, err := enc.Encode(packets.AuthGrant{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec.Feed(out[:4]) // fewer than 8 header bytes
	_, ok, err := dec.Next()
	if ok || err != nil {
		t.Fatalf("partial header: ok=%v err=%v, want false, nil", ok, err)
	}

	dec.Feed(out[4:len(out)-1]) // header complete, payload short by one byte
	_, ok, err = dec.Next()
	if ok || err != nil {
		t.Fatalf("partial payload: ok=%v err=%v, want false, nil", ok, err)
	}

	dec.Feed(out[len(out)-1:])
	_, ok, err = dec.Next()
	if !ok || err != nil {
		t.Fatalf("complete frame: ok=%v err=%v, want true, nil", ok, err)
	}
}

func TestUnknownIdentifierIsFatal(t *testing.T) {
	t.Parallel()

	_, dec, _ := newCodecPair(t, packets.CategoryAuth)
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], 0)
	binary.LittleEndian.PutUint32(header[4:8], 0xFFFFFFFF)
	dec.Feed(header)
	_, _, err := dec.Next()
	if !errors.Is(err, packets.ErrUnknownPacket) {
		t.Fatalf("err = %v, want ErrUnknownPacket", err)
	}
}

func TestMaxSizeEnforcement(t *testing.T) {
	t.Parallel()

	_, dec, reg := newCodecPair(t, packets.CategoryAuth)
	desc, ok := reg.DescriptorFor(packets.ConnectAccept{}.Descriptor().ID)
	if !ok {
		t.Fatal("descriptor not found")
	}
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], desc.MaxSize+1)
	binary.LittleEndian.PutUint32(header[4:8], desc.ID)
	dec.Feed(header)
	_, _, err := dec.Next()
	if !errors.Is(err, frame.ErrTooLong) {
		t.Fatalf("err = %v, want ErrTooLong", err)
	}
}

// TestStateMachineFilterMonotonic reproduces spec.md §8's "state-machine
// filter" property: over a full CONNECT->READY walk, the mask only gains
// bits, never loses any.
func TestStateMachineFilterMonotonic(t *testing.T) {
	t.Parallel()

	masks := []packets.Category{
		packets.CategoryConnection,
		packets.CategoryConnection | packets.CategoryAuth,
		packets.CategoryConnection | packets.CategoryAuth | packets.CategorySetup,
		packets.CategoryConnection | packets.CategoryAuth | packets.CategorySetup | packets.CategoryAssets,
	}
	for i := 1; i < len(masks); i++ {
		if masks[i]&masks[i-1] != masks[i-1] {
			t.Fatalf("mask %v does not retain all bits of previous mask %v", masks[i], masks[i-1])
		}
	}
}

func equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
