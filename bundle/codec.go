package bundle

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lightningnetwork/lnd/tlv"
)

const (
	typeUserID           tlv.Type = 0
	typeTowerID          tlv.Type = 2
	typeRegUserID        tlv.Type = 4
	typeRegSlots         tlv.Type = 6
	typeRegStart         tlv.Type = 8
	typeRegExpiry        tlv.Type = 10
	typeRegSignature     tlv.Type = 12
	typeAppUserSignature tlv.Type = 14
	typeAppStartBlock    tlv.Type = 16
	typeAppSignature     tlv.Type = 18
	typeLocator          tlv.Type = 20
	typeEncryptedBlob    tlv.Type = 22
	typeToSelfDelay      tlv.Type = 24
	typeUserSignature    tlv.Type = 26
)

// maxBundleFileSize caps the size of bundle files read from disk.
const maxBundleFileSize = 1 << 20

// scratch holds the string fields of a bundle as byte slices while they are
// being encoded or decoded.
type scratch struct {
	regSig     []byte
	appUserSig []byte
	appSig     []byte
	blob       []byte
	userSig    []byte
}

// stream builds the TLV stream mapping every field of b, and the string
// fields held by s, to its record.
func (b *Bundle) stream(s *scratch) (*tlv.Stream, error) {
	return tlv.NewStream(
		tlv.MakePrimitiveRecord(
			typeUserID, (*[33]byte)(&b.UserID),
		),
		tlv.MakePrimitiveRecord(
			typeTowerID, (*[33]byte)(&b.TowerID),
		),
		tlv.MakePrimitiveRecord(
			typeRegUserID, (*[33]byte)(&b.RegReceipt.UserID),
		),
		tlv.MakePrimitiveRecord(
			typeRegSlots, &b.RegReceipt.AvailableSlots,
		),
		tlv.MakePrimitiveRecord(
			typeRegStart, &b.RegReceipt.SubscriptionStart,
		),
		tlv.MakePrimitiveRecord(
			typeRegExpiry, &b.RegReceipt.SubscriptionExpiry,
		),
		tlv.MakePrimitiveRecord(typeRegSignature, &s.regSig),
		tlv.MakePrimitiveRecord(typeAppUserSignature, &s.appUserSig),
		tlv.MakePrimitiveRecord(
			typeAppStartBlock, &b.AppReceipt.StartBlock,
		),
		tlv.MakePrimitiveRecord(typeAppSignature, &s.appSig),
		tlv.MakePrimitiveRecord(
			typeLocator, (*[32]byte)(&b.Appointment.Locator),
		),
		tlv.MakePrimitiveRecord(typeEncryptedBlob, &s.blob),
		tlv.MakePrimitiveRecord(
			typeToSelfDelay, &b.Appointment.ToSelfDelay,
		),
		tlv.MakePrimitiveRecord(typeUserSignature, &s.userSig),
	)
}

// Encode writes the bundle to w as a TLV stream.
func (b *Bundle) Encode(w io.Writer) error {
	s := &scratch{
		regSig:     []byte(b.RegReceipt.Signature),
		appUserSig: []byte(b.AppReceipt.UserSignature),
		appSig:     []byte(b.AppReceipt.Signature),
		blob:       b.Appointment.EncryptedBlob,
		userSig:    []byte(b.UserSignature),
	}

	stream, err := b.stream(s)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// Decode reads a TLV encoded bundle from r.
func (b *Bundle) Decode(r io.Reader) error {
	var s scratch

	stream, err := b.stream(&s)
	if err != nil {
		return err
	}

	if err := stream.Decode(r); err != nil {
		return err
	}

	b.RegReceipt.Signature = string(s.regSig)
	b.AppReceipt.UserSignature = string(s.appUserSig)
	b.AppReceipt.Signature = string(s.appSig)
	b.Appointment.EncryptedBlob = s.blob
	b.UserSignature = string(s.userSig)

	return nil
}

// Parse decodes a bundle from either its JSON or its TLV encoding. JSON is
// recognized by its leading brace.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
		}

		return &b, nil
	}

	if err := b.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	return &b, nil
}

// ReadFile reads a JSON or TLV encoded bundle from path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBundleFileSize))
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// WriteFile writes b to path, TLV encoded if binary is set and as indented
// JSON otherwise.
func WriteFile(path string, b *Bundle, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if binary {
		err = b.Encode(w)
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		err = enc.Encode(b)
	}
	if err != nil {
		f.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
