package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
)

func TestServiceGetListing(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	svc, err := NewService(r)
	require.NoError(t, err)
	listing := seedListing(t, r, "10", enums.ListingStatusDraft)

	got, err := svc.GetListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)
	assert.Equal(t, enums.ListingStatusDraft, got.Status)

	_, err = svc.GetListing(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = svc.GetListing(context.Background(), uuid.Nil)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}
