package sim

import (
	"encoding/json"
	"fmt"
)

type OfferKind string

const (
	KindGeniusInterview OfferKind = "genius_interview"
	KindOnTheRadar      OfferKind = "on_the_radar"
	KindTrshd           OfferKind = "trshd"
	KindFallon          OfferKind = "fallon"
	KindOnlyFans        OfferKind = "onlyfans_request"
	KindSoundtrack      OfferKind = "soundtrack_offer"
	KindVogueCover      OfferKind = "vogue_cover"
	KindFeatureRequest  OfferKind = "feature_request"
	KindLabelInterest   OfferKind = "label_interest"
	KindPopBaseQuestion OfferKind = "popbase_question"
	KindAwardInvite     OfferKind = "award_invite"
	KindRedCarpetInvite OfferKind = "red_carpet_invite"
	KindPerformance     OfferKind = "performance_invite"
)

// OfferMeta carries the lifecycle fields shared by every offer variant.
// Resolution flags are one-way: once an offer is accepted, declined or
// expired it never reverts.
type OfferMeta struct {
	ID       string   `json:"id"`
	Offered  GameDate `json:"offered"`
	Expires  GameDate `json:"expires,omitzero"`
	Declined bool     `json:"declined,omitempty"`
	Expired  bool     `json:"expired,omitempty"`
}

func (m *OfferMeta) Meta() *OfferMeta { return m }

func (m *OfferMeta) offerMarker() {}

// Offer is a closed tagged variant: one concrete type per offer kind, each
// carrying only its own resolution fields. The pipeline resolver switches on
// the concrete type exhaustively; there is no reflective probing.
type Offer interface {
	Kind() OfferKind
	Meta() *OfferMeta
	Resolved() bool
	offerMarker()
}

type GeniusInterview struct {
	OfferMeta
	SongID       string `json:"song_id"`
	SubmissionID string `json:"submission_id,omitempty"`
	Accepted     bool   `json:"accepted"`
}

func (o *GeniusInterview) Kind() OfferKind { return KindGeniusInterview }
func (o *GeniusInterview) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type OnTheRadar struct {
	OfferMeta
	SongID   string `json:"song_id"`
	Accepted bool   `json:"accepted"`
}

func (o *OnTheRadar) Kind() OfferKind { return KindOnTheRadar }
func (o *OnTheRadar) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type Trshd struct {
	OfferMeta
	SongID   string `json:"song_id"`
	Accepted bool   `json:"accepted"`
}

func (o *Trshd) Kind() OfferKind { return KindTrshd }
func (o *Trshd) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type FallonOffer struct {
	OfferMeta
	SongID     string   `json:"song_id"`
	Accepted   bool     `json:"accepted"`
	TapingDate GameDate `json:"taping_date,omitzero"`
}

func (o *FallonOffer) Kind() OfferKind { return KindFallon }
func (o *FallonOffer) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type OnlyFansRequest struct {
	OfferMeta
	Accepted bool `json:"accepted"`
}

func (o *OnlyFansRequest) Kind() OfferKind { return KindOnlyFans }
func (o *OnlyFansRequest) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type SoundtrackOffer struct {
	OfferMeta
	SongID    string `json:"song_id"`
	FilmTitle string `json:"film_title"`
	Fulfilled bool   `json:"fulfilled"`
}

func (o *SoundtrackOffer) Kind() OfferKind { return KindSoundtrack }
func (o *SoundtrackOffer) Resolved() bool  { return o.Fulfilled || o.Declined || o.Expired }

type VogueCover struct {
	OfferMeta
	Accepted bool `json:"accepted"`
}

func (o *VogueCover) Kind() OfferKind { return KindVogueCover }
func (o *VogueCover) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type FeatureRequest struct {
	OfferMeta
	FromArtist string `json:"from_artist"`
	Genre      Genre  `json:"genre"`
	Accepted   bool   `json:"accepted"`
}

func (o *FeatureRequest) Kind() OfferKind { return KindFeatureRequest }
func (o *FeatureRequest) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type LabelInterest struct {
	OfferMeta
	ReleaseID string `json:"release_id"`
	Budget    int64  `json:"budget"`
	Accepted  bool   `json:"accepted"`
}

func (o *LabelInterest) Kind() OfferKind { return KindLabelInterest }
func (o *LabelInterest) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type PopBaseQuestion struct {
	OfferMeta
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Answered bool   `json:"answered"`
}

func (o *PopBaseQuestion) Kind() OfferKind { return KindPopBaseQuestion }
func (o *PopBaseQuestion) Resolved() bool  { return o.Answered || o.Declined || o.Expired }

type AwardKind string

const (
	AwardGrammy AwardKind = "grammy"
	AwardOscar  AwardKind = "oscar"
)

// AwardInvite opens a submission window; it resolves when the submission for
// its award year goes in.
type AwardInvite struct {
	OfferMeta
	Award     AwardKind `json:"award"`
	Year      int       `json:"year"`
	Submitted bool      `json:"submitted"`
}

func (o *AwardInvite) Kind() OfferKind { return KindAwardInvite }
func (o *AwardInvite) Resolved() bool  { return o.Submitted || o.Declined || o.Expired }

type RedCarpetInvite struct {
	OfferMeta
	Award    AwardKind `json:"award"`
	Year     int       `json:"year"`
	Accepted bool      `json:"accepted"`
}

func (o *RedCarpetInvite) Kind() OfferKind { return KindRedCarpetInvite }
func (o *RedCarpetInvite) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

type PerformanceInvite struct {
	OfferMeta
	Award    AwardKind `json:"award"`
	Year     int       `json:"year"`
	SongID   string    `json:"song_id"`
	Accepted bool      `json:"accepted"`
}

func (o *PerformanceInvite) Kind() OfferKind { return KindPerformance }
func (o *PerformanceInvite) Resolved() bool  { return o.Accepted || o.Declined || o.Expired }

// OfferSet serializes the offer arena as {kind, payload} envelopes so the
// whole state stays one opaque JSON snapshot.
type OfferSet map[string]Offer

type offerEnvelope struct {
	Kind    OfferKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (s OfferSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]offerEnvelope, len(s))
	for id, o := range s {
		payload, err := json.Marshal(o)
		if err != nil {
			return nil, err
		}
		out[id] = offerEnvelope{Kind: o.Kind(), Payload: payload}
	}
	return json.Marshal(out)
}

func (s *OfferSet) UnmarshalJSON(data []byte) error {
	var raw map[string]offerEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(OfferSet, len(raw))
	for id, env := range raw {
		o, err := decodeOffer(env)
		if err != nil {
			return err
		}
		out[id] = o
	}
	*s = out
	return nil
}

func decodeOffer(env offerEnvelope) (Offer, error) {
	var o Offer
	switch env.Kind {
	case KindGeniusInterview:
		o = &GeniusInterview{}
	case KindOnTheRadar:
		o = &OnTheRadar{}
	case KindTrshd:
		o = &Trshd{}
	case KindFallon:
		o = &FallonOffer{}
	case KindOnlyFans:
		o = &OnlyFansRequest{}
	case KindSoundtrack:
		o = &SoundtrackOffer{}
	case KindVogueCover:
		o = &VogueCover{}
	case KindFeatureRequest:
		o = &FeatureRequest{}
	case KindLabelInterest:
		o = &LabelInterest{}
	case KindPopBaseQuestion:
		o = &PopBaseQuestion{}
	case KindAwardInvite:
		o = &AwardInvite{}
	case KindRedCarpetInvite:
		o = &RedCarpetInvite{}
	case KindPerformance:
		o = &PerformanceInvite{}
	default:
		return nil, fmt.Errorf("unknown offer kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Payload, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Email is one inbox entry. Immutable once created except the Read flag.
type Email struct {
	ID      string    `json:"id"`
	OfferID string    `json:"offer_id,omitempty"`
	Kind    OfferKind `json:"kind,omitempty"`
	Date    GameDate  `json:"date"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body,omitempty"`
	Read    bool      `json:"read"`
}
