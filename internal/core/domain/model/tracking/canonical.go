package tracking

import "strings"

// Code is the fixed vocabulary carrier statuses are mapped into.
type Code string

const (
	Delivered        Code = "DELIVERED"
	DeliveredToAgent Code = "DELIVERED_TO_AGENT"
	InTransit        Code = "IN_TRANSIT"
	OutForDelivery   Code = "OUT_FOR_DELIVERY"
	Accepted         Code = "ACCEPTED"
	ShipmentAccepted Code = "SHIPMENT_ACCEPTED"
	DeliveryAttempt  Code = "DELIVERY_ATTEMPT"
	NotYetInSystem   Code = "NOT_YET_IN_SYSTEM"
	LabelCreated     Code = "LABEL_CREATED"
	Unknown          Code = "UNKNOWN"
)

var exactCodes = map[string]Code{
	"DE":                 Delivered,
	"DELIVERED":          Delivered,
	"SP":                 DeliveredToAgent,
	"DELIVERED_TO_AGENT": DeliveredToAgent,
	"IT":                 InTransit,
	"IN_TRANSIT":         InTransit,
	"TRANSIT":            InTransit,
	"PU":                 InTransit,
	"OC":                 InTransit,
	"OP":                 InTransit,
	"PC":                 InTransit,
	"SC":                 InTransit,
	"AR":                 InTransit,
	"AP":                 InTransit,
	"IP":                 InTransit,
	"OF":                 OutForDelivery,
	"OD":                 OutForDelivery,
	"OUT_FOR_DELIVERY":   OutForDelivery,
	"AC":                 Accepted,
	"ACCEPTED":           Accepted,
	"SHIPMENT_ACCEPTED":  ShipmentAccepted,
	"AT":                 DeliveryAttempt,
	"DELIVERY_ATTEMPT":   DeliveryAttempt,
	"NY":                 NotYetInSystem,
	"NOT_YET_IN_SYSTEM":  NotYetInSystem,
	"UN":                 Unknown,
	"UNKNOWN":            Unknown,
	"LC":                 LabelCreated,
	"LABEL_CREATED":      LabelCreated,
	"PRE_TRANSIT":        LabelCreated,
}

type rule struct {
	needle string
	code   Code
}

// Order matters: more specific needles come first.
var codeSubstrings = []rule{
	{"AGENT", DeliveredToAgent},
	{"OUT_FOR", OutForDelivery},
	{"ATTEMPT", DeliveryAttempt},
	{"PRE_TRANSIT", LabelCreated},
	{"LABEL", LabelCreated},
	{"NOT_YET", NotYetInSystem},
	{"DELIVERED", Delivered},
	{"SHIPMENT_ACCEPT", ShipmentAccepted},
	{"ACCEPT", Accepted},
	{"TRANSIT", InTransit},
}

var descriptionKeywords = []rule{
	{"delivered to agent", DeliveredToAgent},
	{"parcel locker", DeliveredToAgent},
	{"pickup point", DeliveredToAgent},
	{"out for delivery", OutForDelivery},
	{"attempt", DeliveryAttempt},
	{"delivered", Delivered},
	{"shipment accepted", ShipmentAccepted},
	{"accepted", Accepted},
	{"acceptance", Accepted},
	{"label created", LabelCreated},
	{"shipping label", LabelCreated},
	{"pre-shipment", LabelCreated},
	{"awaiting item", LabelCreated},
	{"not yet", NotYetInSystem},
	{"no information", NotYetInSystem},
	{"in transit", InTransit},
	{"in-transit", InTransit},
	{"arrived at", InTransit},
	{"departed", InTransit},
	{"en route", InTransit},
	{"on its way", InTransit},
	{"processed", InTransit},
	{"picked up", InTransit},
}

// Canonicalize maps a raw carrier code and description into Code. The exact
// code table is consulted first, then substrings of the code, then keywords
// in the description. Anything unmatched is Unknown.
func Canonicalize(code, description string) Code {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c != "" {
		if canonical, ok := exactCodes[c]; ok && canonical != Unknown {
			return canonical
		}
		for _, r := range codeSubstrings {
			if strings.Contains(c, r.needle) {
				return r.code
			}
		}
	}

	d := strings.ToLower(strings.TrimSpace(description))
	if d != "" {
		for _, r := range descriptionKeywords {
			if strings.Contains(d, r.needle) {
				return r.code
			}
		}
	}

	return Unknown
}
