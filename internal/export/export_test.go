package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pethotel/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func stay(id, room, in, out string, pets ...models.Pet) models.Reservation {
	return models.Reservation{
		ID:        id,
		Type:      models.TypeHotel,
		Status:    models.StatusConfirmed,
		Client:    models.Client{Name: "Ana"},
		HotelStay: &models.HotelStay{CheckInDate: in, CheckOutDate: out, RoomNumber: room, Pets: pets},
	}
}

func fixture() models.Reservations {
	a := stay("a", "HAB.12", "2024-12-01", "2024-12-05",
		models.Pet{Name: "Toby", Weight: 8, Allergies: "pollo"},
		models.Pet{Name: "Luna", Weight: 4})
	a.Client.Warnings = "muerde"
	a.AdditionalServices = models.AdditionalServices{
		models.MedicationService{PetIndex: 0, Frequency: models.MedicationMultiple, Comment: "antibiótico"},
		models.SpecialFoodService{PetIndex: 1, FoodType: models.FoodFrozen},
		models.SpecialCareService{PetIndex: 1},
	}

	b := stay("b", "HAB.3", "2024-12-02", "2024-12-03", models.Pet{Name: `Rex "el grande"`, Weight: 30})
	gone := stay("c", "HAB.4", "2024-11-28", "2024-12-02", models.Pet{Name: "Kira", Weight: 5})
	done := stay("d", "HAB.5", "2024-12-01", "2024-12-04", models.Pet{Name: "Nala", Weight: 5})
	done.Status = models.StatusCompleted

	return models.Reservations{a, b, gone, done}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(fixture(), "2024-12-02")
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"HAB.3", `Rex "el grande"`, "", "", "", "", ""}, rows[0].Fields())
	assert.Equal(t, []string{"HAB.12", "Toby", "Varias veces al día. antibiótico", "", "", "pollo", "muerde"}, rows[1].Fields())
	assert.Equal(t, []string{"HAB.12", "Luna", "", "Sí", "Congelada", "", "muerde"}, rows[2].Fields())

	assert.Empty(t, BuildRows(fixture(), "2024-12-10"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, BuildRows(fixture(), "2024-12-02")[:1]))

	want := `"Habitación","Mascota","Medicación","Curas","Alimentación","Alergias","Advertencias"` + "\n" +
		`"HAB.3","Rex ""el grande""","","","","",""` + "\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "necesidades_diarias_2024-12-02.csv", CSVFileName("2024-12-02"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "2024-12-02", BuildRows(fixture(), "2024-12-02")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Header, rows[1])
	assert.Equal(t, "HAB.3", rows[2][0])
	assert.Equal(t, "Toby", rows[3][1])
	assert.Equal(t, "necesidades_diarias_2024-12-02.xlsx", XLSXFileName("2024-12-02"))
}

type sourceFunc func(ctx context.Context, date string) (models.Reservations, error)

func (f sourceFunc) Active(ctx context.Context, date string) (models.Reservations, error) {
	return f(ctx, date)
}

func TestExporter_WriteFiles(t *testing.T) {
	logger := zerolog.Nop()
	dir := filepath.Join(t.TempDir(), "exports")

	var asked string
	e := NewExporter(sourceFunc(func(_ context.Context, date string) (models.Reservations, error) {
		asked = date
		return fixture().ActiveOn(date), nil
	}), dir, &logger)

	paths, err := e.WriteFiles(context.Background(), "2024-12-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-02", asked)
	require.Len(t, paths, 2)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	failing := NewExporter(sourceFunc(func(context.Context, string) (models.Reservations, error) {
		return nil, errors.New("db down")
	}), dir, &logger)
	_, err = failing.WriteFiles(context.Background(), "2024-12-02")
	assert.ErrorContains(t, err, "db down")
}
