package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluviorn/emparn-fetch/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	city, station, mm := "Natal", "Natal (EMPARN)", 12.5
	obs := domain.Observation{
		Region:          "Leste Potiguar",
		Municipality:    &city,
		Station:         &station,
		PrecipitationMM: &mm,
	}

	msg, err := serializeToMessage(obs, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("Leste Potiguar|Natal|Natal (EMPARN)"), msg.Key)
	assert.Contains(t, string(msg.Value), `"precipitation_mm":12.5`)
	assert.Contains(t, string(msg.Value), `"station_type":null`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Leste Potiguar"), msg.Headers[0].Value)
	assert.Equal(t, "scraped_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_ConvertsToUTC(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	msg, err := serializeToMessage(domain.Observation{Region: "Agreste Potiguar"}, time.Date(2024, 5, 1, 9, 0, 0, 0, brt))
	require.NoError(t, err)
	assert.Equal(t, []byte("2024-05-01T12:00:00Z"), msg.Headers[1].Value)
}
