package gapclosure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

type mockOptionRepo struct {
	findFn func(ctx context.Context, gap reference.GapType) ([]*reference.GapClosureOption, error)
}

func (m *mockOptionRepo) FindByGapType(ctx context.Context, gap reference.GapType) ([]*reference.GapClosureOption, error) {
	if m.findFn != nil {
		return m.findFn(ctx, gap)
	}
	return nil, nil
}

type mockPartnerRepo struct {
	partners []*reference.PotentialPartner
	err      error
}

func (m *mockPartnerRepo) List(context.Context) ([]*reference.PotentialPartner, error) {
	return m.partners, m.err
}

func ratedPartner(name string, rating float64, categories ...string) *reference.PotentialPartner {
	return &reference.PotentialPartner{
		ID:                   uuid.New(),
		Name:                 name,
		Rating:               &rating,
		ExperienceCategories: categories,
	}
}

func experienceCond(text string) *condition.GateCondition {
	return &condition.GateCondition{
		ID:       uuid.New(),
		Text:     text,
		Category: condition.CategoryExperience,
	}
}

func TestSuggestClosuresGapTypeInference(t *testing.T) {
	tests := []struct {
		name string
		text string
		want reference.GapType
	}{
		{"experience hebrew", "נדרש ניסיון של 5 שנים", reference.GapExperience},
		{"revenue", "מחזור כספי שנתי של 10 מיליון", reference.GapRevenue},
		{"certificate", "תעודת ISO 9001 בתוקף", reference.GapCertificate},
		{"staff", "צוות של 5 מהנדסים", reference.GapStaff},
		{"financial guarantee", "ערבות בנקאית בסך 100,000", reference.GapFinancial},
		{"unrecognized", "דרישה כללית אחרת", reference.GapOther},
		{"experience outranks financial", "ניסיון קודם וערבות בנקאית", reference.GapExperience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockOptionRepo{}, &mockPartnerRepo{}, nil, 5, logging.NewNopLogger())
			rec, err := svc.SuggestClosures(context.Background(), experienceCond(tt.text))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.GapType)
		})
	}
}

func TestSuggestClosuresOptionsSortedByTime(t *testing.T) {
	options := &mockOptionRepo{
		findFn: func(_ context.Context, gap reference.GapType) ([]*reference.GapClosureOption, error) {
			require.Equal(t, reference.GapCertificate, gap)
			return []*reference.GapClosureOption{
				{Method: "hire certified subcontractor", TypicalTimeDays: 90},
				{Method: "fast-track certification", TypicalTimeDays: 30},
				{Method: "full certification program", TypicalTimeDays: 180},
			}, nil
		},
	}
	svc := NewService(options, &mockPartnerRepo{}, nil, 5, logging.NewNopLogger())

	rec, err := svc.SuggestClosures(context.Background(), experienceCond("נדרשת הסמכת ISO"))
	require.NoError(t, err)

	require.Len(t, rec.Options, 3)
	assert.Equal(t, 30, rec.Options[0].TypicalTimeDays)
	assert.Equal(t, 90, rec.Options[1].TypicalTimeDays)
	assert.Equal(t, 180, rec.Options[2].TypicalTimeDays)
}

func TestSuggestClosuresOtherGapHasNoOptions(t *testing.T) {
	options := &mockOptionRepo{
		findFn: func(context.Context, reference.GapType) ([]*reference.GapClosureOption, error) {
			t.Fatal("options repo must not be queried for the other gap type")
			return nil, nil
		},
	}
	svc := NewService(options, &mockPartnerRepo{}, nil, 5, logging.NewNopLogger())

	rec, err := svc.SuggestClosures(context.Background(), experienceCond("דרישה שאינה מסווגת"))
	require.NoError(t, err)
	assert.Equal(t, reference.GapOther, rec.GapType)
	assert.Empty(t, rec.Options)
}

func TestSuggestClosuresPartnerRanking(t *testing.T) {
	unrated := &reference.PotentialPartner{
		ID:                   uuid.New(),
		Name:                 "unrated",
		ExperienceCategories: []string{"experience"},
	}
	partners := &mockPartnerRepo{partners: []*reference.PotentialPartner{
		ratedPartner("mid", 3.5, "experience"),
		unrated,
		ratedPartner("top", 4.8, "experience"),
		ratedPartner("irrelevant", 5.0, "staff"),
	}}
	svc := NewService(&mockOptionRepo{}, partners, nil, 5, logging.NewNopLogger())

	rec, err := svc.SuggestClosures(context.Background(), experienceCond("נדרש ניסיון מוכח"))
	require.NoError(t, err)

	require.Len(t, rec.Partners, 3)
	assert.Equal(t, "top", rec.Partners[0].Name)
	assert.Equal(t, "mid", rec.Partners[1].Name)
	assert.Equal(t, "unrated", rec.Partners[2].Name)
}

func TestSuggestClosuresPartnerCap(t *testing.T) {
	var many []*reference.PotentialPartner
	for i := 0; i < 8; i++ {
		many = append(many, ratedPartner("p", float64(i), "experience"))
	}
	svc := NewService(&mockOptionRepo{}, &mockPartnerRepo{partners: many}, nil, 5, logging.NewNopLogger())

	rec, err := svc.SuggestClosures(context.Background(), experienceCond("נדרש ניסיון"))
	require.NoError(t, err)
	assert.Len(t, rec.Partners, 5)
}

func TestSuggestClosuresEmptyCondition(t *testing.T) {
	svc := NewService(&mockOptionRepo{}, &mockPartnerRepo{}, nil, 5, logging.NewNopLogger())
	_, err := svc.SuggestClosures(context.Background(), nil)
	assert.Error(t, err)

	_, err = svc.SuggestClosures(context.Background(), &condition.GateCondition{})
	assert.Error(t, err)
}

func TestSuggestClosuresPartnerRepoFailure(t *testing.T) {
	svc := NewService(&mockOptionRepo{}, &mockPartnerRepo{err: assert.AnError}, nil, 5, logging.NewNopLogger())
	_, err := svc.SuggestClosures(context.Background(), experienceCond("נדרש ניסיון"))
	assert.Error(t, err)
}
