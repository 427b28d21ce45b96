package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

func TestColorServiceSetCourseColor(t *testing.T) {
	store := newRecordStoreStub()
	store.put(sampleRecord("user-1"))
	svc := NewColorService(store, nil, nil, grading.NewEngine(0), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetCourseColor(ctx, "user-1", "fis", dto.ColorRequest{Color: "Melocotón"}))
	assert.Equal(t, "Melocotón", store.get("user-1").RamoColors["fis"])

	err := svc.SetCourseColor(ctx, "user-1", "fis", dto.ColorRequest{Color: "Fucsia"})
	assertAppError(t, err, appErrors.ErrInvalidColor)

	err = svc.SetCourseColor(ctx, "user-1", "fis", dto.ColorRequest{})
	assertAppError(t, err, appErrors.ErrValidation)

	err = svc.SetCourseColor(ctx, "user-1", "nope", dto.ColorRequest{Color: "Azul"})
	assertAppError(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 1, store.saves)
}

func TestColorServiceSetSemesterColor(t *testing.T) {
	store := newRecordStoreStub()
	store.put(sampleRecord("user-1"))
	svc := NewColorService(store, nil, nil, grading.NewEngine(0), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetSemesterColor(ctx, "user-1", "2025-2", dto.ColorRequest{Color: "Menta"}))
	require.NoError(t, svc.SetSemesterColor(ctx, "user-1", "2025-1", dto.ColorRequest{Color: "Gris"}))
	saved := store.get("user-1")
	assert.Equal(t, "Menta", saved.SemestreColors["2025-2"])
	assert.Equal(t, "Gris", saved.SemestreColors["2025-1"])

	err := svc.SetSemesterColor(ctx, "user-1", "1990-1", dto.ColorRequest{Color: "Azul"})
	assertAppError(t, err, appErrors.ErrNotFound)
}

func TestPalette(t *testing.T) {
	assert.Len(t, Palette, 12)
	assert.True(t, InPalette(DefaultColor))
	assert.True(t, InPalette("Turquesa"))
	assert.False(t, InPalette("azul"))
	assert.False(t, InPalette(""))
}
