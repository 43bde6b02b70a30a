package sim

// Balance stores the tuning variables for one save. Values load from
// 'balance.yaml' when present; DefaultBalance is the shipped calibration.
// Costs are whole promo dollars, weights are unitless multipliers.
type Balance struct {
	StartWeek int `yaml:"start_week" json:"start_week"`
	StartYear int `yaml:"start_year" json:"start_year"`

	// Chart sizes. A chart shorter than its size is valid ("no data" padding
	// is never generated).
	HotChartSize   int `yaml:"hot_chart_size" json:"hot_chart_size"`
	AlbumChartSize int `yaml:"album_chart_size" json:"album_chart_size"`
	GenreChartSize int `yaml:"genre_chart_size" json:"genre_chart_size"`

	// Momentum model.
	QualityWeight    float64 `yaml:"quality_weight" json:"quality_weight"`
	InertiaWeight    float64 `yaml:"inertia_weight" json:"inertia_weight"`
	ReleaseHype      float64 `yaml:"release_hype" json:"release_hype"`
	HypeDecay        float64 `yaml:"hype_decay" json:"hype_decay"` // geometric, per week
	PromoSpendWeight float64 `yaml:"promo_spend_weight" json:"promo_spend_weight"`
	NoiseScale       float64 `yaml:"noise_scale" json:"noise_scale"`

	GenreWeights map[Genre]float64 `yaml:"genre_weights" json:"genre_weights"`

	// Promotional action costs and boosts.
	CountdownCost int64 `yaml:"countdown_cost" json:"countdown_cost"`
	GeniusCost    int64 `yaml:"genius_cost" json:"genius_cost"`
	FallonCost    int64 `yaml:"fallon_cost" json:"fallon_cost"`
	PressRunCost  int64 `yaml:"press_run_cost" json:"press_run_cost"`
	TVSpotCost    int64 `yaml:"tv_spot_cost" json:"tv_spot_cost"`

	CountdownBoost float64 `yaml:"countdown_boost" json:"countdown_boost"`
	GeniusBoost    float64 `yaml:"genius_boost" json:"genius_boost"`
	FallonBoost    float64 `yaml:"fallon_boost" json:"fallon_boost"`
	PressRunBoost  float64 `yaml:"press_run_boost" json:"press_run_boost"`
	TVSpotBoost    float64 `yaml:"tv_spot_boost" json:"tv_spot_boost"`

	// Label submissions.
	LabelPromoBudget int64 `yaml:"label_promo_budget" json:"label_promo_budget"`

	// Offer lifecycle.
	OfferTTLWeeks int `yaml:"offer_ttl_weeks" json:"offer_ttl_weeks"`

	// Streams accrual: rank 1 earns StreamsTop per week, decaying linearly to
	// StreamsFloor at the bottom of the chart.
	StreamsTop   int64 `yaml:"streams_top" json:"streams_top"`
	StreamsFloor int64 `yaml:"streams_floor" json:"streams_floor"`

	// NPC universe.
	NPCSongs  int `yaml:"npc_songs" json:"npc_songs"`
	NPCAlbums int `yaml:"npc_albums" json:"npc_albums"`

	// Award calendar (week of year).
	GrammySubmissionWeek int `yaml:"grammy_submission_week" json:"grammy_submission_week"`
	GrammyNominationWeek int `yaml:"grammy_nomination_week" json:"grammy_nomination_week"`
	GrammyCeremonyWeek   int `yaml:"grammy_ceremony_week" json:"grammy_ceremony_week"`
	OscarSubmissionWeek  int `yaml:"oscar_submission_week" json:"oscar_submission_week"`
	OscarNominationWeek  int `yaml:"oscar_nomination_week" json:"oscar_nomination_week"`
	OscarCeremonyWeek    int `yaml:"oscar_ceremony_week" json:"oscar_ceremony_week"`

	// Touring.
	TicketPrice int64 `yaml:"ticket_price" json:"ticket_price"`
}

func DefaultBalance() Balance {
	return Balance{
		StartWeek: 1,
		StartYear: 2024,

		HotChartSize:   100,
		AlbumChartSize: 50,
		GenreChartSize: 50,

		QualityWeight:    1.0,
		InertiaWeight:    0.55,
		ReleaseHype:      62.0,
		HypeDecay:        0.72,
		PromoSpendWeight: 6.5,
		NoiseScale:       4.0,

		GenreWeights: map[Genre]float64{
			GenrePop:     1.00,
			GenreRap:     0.97,
			GenreRnB:     0.90,
			GenreCountry: 0.84,
			GenreRock:    0.80,
			GenreEDM:     0.86,
			GenreIndie:   0.78,
		},

		CountdownCost: 100_000,
		GeniusCost:    150_000,
		FallonCost:    500_000,
		PressRunCost:  75_000,
		TVSpotCost:    250_000,

		CountdownBoost: 14,
		GeniusBoost:    18,
		FallonBoost:    40,
		PressRunBoost:  9,
		TVSpotBoost:    24,

		LabelPromoBudget: 500_000,

		OfferTTLWeeks: 6,

		StreamsTop:   2_400_000,
		StreamsFloor: 18_000,

		NPCSongs:  170,
		NPCAlbums: 55,

		GrammySubmissionWeek: 40,
		GrammyNominationWeek: 48,
		GrammyCeremonyWeek:   5,
		OscarSubmissionWeek:  44,
		OscarNominationWeek:  3,
		OscarCeremonyWeek:    10,

		TicketPrice: 68,
	}
}

// genreWeight falls back to a neutral weight for genres missing from the
// balance file rather than zeroing them out of the charts.
func (b Balance) genreWeight(g Genre) float64 {
	if w, ok := b.GenreWeights[g]; ok {
		return w
	}
	return 0.8
}
