package tracking

import (
	"regexp"
	"strings"
)

// Classification is the classifier output for one tracking response.
type Classification struct {
	StatusCode        string
	StatusDescription string
	EstimatedDelivery string
	LastUpdated       string
	Canonical         Code

	Delivered          bool
	InTransit          bool
	AcceptedWithoutETA bool
}

// Moving reports whether the response is evidence that the parcel has entered
// the carrier network. An acceptance scan with no ETA counts as weak movement.
func (c Classification) Moving() bool {
	return c.InTransit || c.AcceptedWithoutETA
}

const (
	codeDelivered        = "DE"
	codeAccepted         = "AC"
	codeShipmentAccepted = "SHIPMENT_ACCEPTED"
	keywordDelivered     = "delivered"
)

var transitCodes = map[string]struct{}{
	"IT": {}, "OF": {}, "AC": {}, "AT": {}, "NY": {}, "SP": {}, "PU": {}, "OC": {},
	"OD": {}, "OP": {}, "PC": {}, "SC": {}, "AR": {}, "AP": {}, "IP": {},
}

var transitKeywords = []string{
	"in transit",
	"in-transit",
	"out for delivery",
	"arrived at",
	"departed",
	"on its way",
	"en route",
	"processed through",
	"picked up",
}

var acceptanceRe = regexp.MustCompile(`accept(ed|ance)`)

// Classify derives the delivered, in-transit and accepted-without-ETA flags.
//
//   - delivered: code DE, or the description mentions "delivered".
//   - in transit: a transit code, or a transit phrase in a description that
//     does not mention "delivered". A bare acceptance (code AC or an
//     acceptance phrase) only counts once the carrier has promised an ETA.
//   - accepted without ETA: no ETA and an acceptance code or phrase.
func Classify(r Response) Classification {
	code := strings.ToUpper(strings.TrimSpace(r.StatusCode))
	desc := strings.ToLower(strings.TrimSpace(r.StatusDescription))
	hasETA := strings.TrimSpace(r.EstimatedDelivery) != ""
	mentionsDelivered := strings.Contains(desc, keywordDelivered)
	acceptancePhrase := acceptanceRe.MatchString(desc)

	_, isTransitCode := transitCodes[code]
	transitByCode := isTransitCode && (code != codeAccepted || hasETA)

	transitByText := false
	if !mentionsDelivered && (hasETA || !acceptancePhrase) {
		transitByText = containsAny(desc, transitKeywords) || (hasETA && acceptancePhrase)
	}

	inTransit := transitByCode || transitByText
	if code == codeAccepted && !hasETA {
		inTransit = false
	}

	return Classification{
		StatusCode:         r.StatusCode,
		StatusDescription:  r.StatusDescription,
		EstimatedDelivery:  r.EstimatedDelivery,
		LastUpdated:        r.LastUpdated,
		Canonical:          Canonicalize(r.StatusCode, r.StatusDescription),
		Delivered:          code == codeDelivered || mentionsDelivered,
		InTransit:          inTransit,
		AcceptedWithoutETA: !hasETA && (code == codeAccepted || code == codeShipmentAccepted || acceptancePhrase),
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
