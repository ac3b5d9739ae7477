package services

import (
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/integra/internal/config"
	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

// Quota statuses, strictest first.
const (
	QuotaStatusZeroRelapse = "zero_relapse"
	QuotaStatusOver        = "over"
	QuotaStatusAt          = "at"
	QuotaStatusUnder       = "under"
)

// QuotaState is the derived weekly quota position for one addiction-therapy
// substance. It is recomputed fresh on every query and never persisted.
type QuotaState struct {
	Substance        string  `json:"substance"`
	WeekN            int     `json:"week_n"`
	QuotaWeek0       float64 `json:"quota_week_0"`
	DecayFactor      float64 `json:"decay_factor"`
	CurrentQuota     float64 `json:"current_quota"`
	UnitsUsed        float64 `json:"units_used"`
	Status           string  `json:"status"`
	CoachingFlag     bool    `json:"coaching_flag"`
	PenanceTriggered bool    `json:"penance_triggered"`
}

// BuildQuotaState computes the quota state for a substance from its full
// intake history. Returns nil when the substance has no decay configuration
// (quota tracking is opt-in).
//
// week_n counts ISO weeks (Monday start) between the earliest parseable
// record date and the reference date. units_used sums numeric amounts of
// records landing in the reference date's week only.
func BuildQuotaState(substance string, rules *config.Rules, history []models.Record, referenceDate time.Time) *QuotaState {
	params, ok := rules.QuotaParamsFor(substance)
	if !ok {
		return nil
	}

	substanceLower := strings.ToLower(substance)
	currentWeekStart := WeekStart(referenceDate)

	substanceRecords := make([]models.Record, 0, len(history))
	for _, record := range history {
		if strings.ToLower(record.String("substance")) == substanceLower {
			substanceRecords = append(substanceRecords, record)
		}
	}

	weekN := 0
	var earliest time.Time
	for _, record := range substanceRecords {
		recordTime, ok := record.Timestamp()
		if !ok {
			continue
		}
		date := CivilDate(recordTime)
		if earliest.IsZero() || date.Before(earliest) {
			earliest = date
		}
	}
	if !earliest.IsZero() {
		deltaDays := int(currentWeekStart.Sub(WeekStart(earliest)).Hours() / 24)
		if deltaDays > 0 {
			weekN = deltaDays / 7
		}
	}

	currentQuota := params.QuotaWeek0 * math.Pow(params.DecayFactor, float64(weekN))

	unitsUsed := 0.0
	for _, record := range substanceRecords {
		recordTime, ok := record.Timestamp()
		if !ok {
			continue
		}
		if !WeekStart(recordTime).Equal(currentWeekStart) {
			continue
		}
		value, err := strconv.ParseFloat(record.String("amount"), 64)
		if err != nil {
			log.Printf("quota: non-numeric amount in record: %q", record.String("amount"))
			continue
		}
		unitsUsed += value
	}

	state := &QuotaState{
		Substance:    substanceLower,
		WeekN:        weekN,
		QuotaWeek0:   params.QuotaWeek0,
		DecayFactor:  params.DecayFactor,
		CurrentQuota: currentQuota,
		UnitsUsed:    unitsUsed,
	}

	// Priority order matters: a decayed-to-zero quota with any use this
	// week is a stricter regime than merely exceeding a nonzero quota.
	switch {
	case currentQuota <= 0 && unitsUsed > 0:
		state.Status = QuotaStatusZeroRelapse
		state.PenanceTriggered = true
	case unitsUsed > currentQuota:
		state.Status = QuotaStatusOver
		state.CoachingFlag = true
	case unitsUsed == currentQuota:
		state.Status = QuotaStatusAt
	default:
		state.Status = QuotaStatusUnder
	}

	return state
}

// QuotaService reads intake history from the lake and derives quota states.
type QuotaService struct {
	store *lake.Store
	rules *config.Rules
}

func NewQuotaService(store *lake.Store, rules *config.Rules) *QuotaService {
	return &QuotaService{store: store, rules: rules}
}

// State derives the quota state as of referenceDate. Returns (nil, nil)
// when the substance is not quota-tracked.
func (service *QuotaService) State(substance string, referenceDate time.Time) (*QuotaState, error) {
	if _, tracked := service.rules.QuotaParamsFor(substance); !tracked {
		return nil, nil
	}
	history, err := service.store.Query("intake", nil)
	if err != nil {
		return nil, err
	}
	return BuildQuotaState(substance, service.rules, history, referenceDate), nil
}
