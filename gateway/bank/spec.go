package bank

import (
	"io"

	"github.com/moov-io/iso8583"
	"github.com/moov-io/iso8583/encoding"
	"github.com/moov-io/iso8583/field"
	"github.com/moov-io/iso8583/network"
	"github.com/moov-io/iso8583/padding"
	"github.com/moov-io/iso8583/prefix"
)

// spec is the subset of ISO 8583:1987 the gateway exchanges with the bank.
var spec = &iso8583.MessageSpec{
	Name: "Payment Gateway Authorization",
	Fields: map[int]field.Field{
		0: field.NewString(&field.Spec{
			Length:      4,
			Description: "Message Type Indicator",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		1: field.NewBitmap(&field.Spec{
			Length:      8,
			Description: "Bitmap",
			Enc:         encoding.BytesToASCIIHex,
			Pref:        prefix.Hex.Fixed,
		}),
		2: field.NewString(&field.Spec{
			Length:      19,
			Description: "Primary Account Number",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		3: field.NewString(&field.Spec{
			Length:      6,
			Description: "Processing Code",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		4: field.NewNumeric(&field.Spec{
			Length:      12,
			Description: "Transaction Amount",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
			Pad:         padding.Left('0'),
		}),
		7: field.NewString(&field.Spec{
			Length:      10,
			Description: "Transmission Date & Time",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		11: field.NewString(&field.Spec{
			Length:      6,
			Description: "Systems Trace Audit Number (STAN)",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		14: field.NewString(&field.Spec{
			Length:      4,
			Description: "Expiration Date",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		38: field.NewString(&field.Spec{
			Length:      6,
			Description: "Authorization Identification Response",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LL,
		}),
		39: field.NewString(&field.Spec{
			Length:      2,
			Description: "Response Code",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
		48: field.NewString(&field.Spec{
			Length:      999,
			Description: "Additional Data - Card Verification Value",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.LLL,
		}),
		49: field.NewString(&field.Spec{
			Length:      3,
			Description: "Currency Code, Transaction",
			Enc:         encoding.ASCII,
			Pref:        prefix.ASCII.Fixed,
		}),
	},
}

type authorizationRequestMessage struct {
	MTI                  *field.String  `index:"0"`
	PrimaryAccountNumber *field.String  `index:"2"`
	ProcessingCode       *field.String  `index:"3"`
	Amount               *field.Numeric `index:"4"`
	TransmissionDateTime *field.String  `index:"7"`
	STAN                 *field.String  `index:"11"`
	ExpirationDate       *field.String  `index:"14"`
	CVV                  *field.String  `index:"48"`
	Currency             *field.String  `index:"49"`
}

type authorizationResponseMessage struct {
	MTI               *field.String `index:"0"`
	STAN              *field.String `index:"11"`
	AuthorizationCode *field.String `index:"38"`
	ResponseCode      *field.String `index:"39"`
}

const (
	mtiAuthorizationRequest  = "0100"
	mtiAuthorizationResponse = "0110"
	processingCodePurchase   = "000000"
	responseCodeApproved     = "00"
)

func readMessageLength(r io.Reader) (int, error) {
	header := network.NewBinary2BytesHeader()
	n, err := header.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return header.Length(), nil
}

func writeMessageLength(w io.Writer, length int) (int, error) {
	header := network.NewBinary2BytesHeader()
	if err := header.SetLength(length); err != nil {
		return 0, err
	}
	return header.WriteTo(w)
}
