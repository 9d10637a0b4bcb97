// Package csvsource reads the booking source table into a gota DataFrame.
package csvsource

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/domain"
)

// NullValues are the literals parsed as missing cells.
var NullValues = []string{"Undefined", "NA", ""}

// columnTypes pins the known schema so type detection cannot drift with the
// contents of a particular file. Counts are read as floats and narrowed when
// records are built.
var columnTypes = map[string]series.Type{
	domain.ColHotel:                       series.String,
	domain.ColIsCanceled:                  series.Float,
	domain.ColLeadTime:                    series.Float,
	domain.ColArrivalYear:                 series.Float,
	domain.ColArrivalMonth:                series.String,
	domain.ColArrivalWeekNumber:           series.Float,
	domain.ColArrivalDayOfMonth:           series.Float,
	domain.ColWeekendNights:               series.Float,
	domain.ColWeekNights:                  series.Float,
	domain.ColAdults:                      series.Float,
	domain.ColChildren:                    series.Float,
	domain.ColBabies:                      series.Float,
	domain.ColMeal:                        series.String,
	domain.ColCountry:                     series.String,
	domain.ColMarketSegment:               series.String,
	domain.ColDistributionChannel:         series.String,
	domain.ColIsRepeatedGuest:             series.Float,
	domain.ColPreviousCancellations:       series.Float,
	domain.ColPreviousBookingsNotCanceled: series.Float,
	domain.ColReservedRoomType:            series.String,
	domain.ColAssignedRoomType:            series.String,
	domain.ColBookingChanges:              series.Float,
	domain.ColDepositType:                 series.String,
	domain.ColAgent:                       series.String,
	domain.ColCompany:                     series.String,
	domain.ColDaysInWaitingList:           series.Float,
	domain.ColCustomerType:                series.String,
	domain.ColADR:                         series.Float,
	domain.ColParkingSpaces:               series.Float,
	domain.ColSpecialRequests:             series.Float,
	domain.ColReservationStatus:           series.String,
	domain.ColReservationStatusDate:       series.String,
}

// Read parses a delimited table with a header row.
func Read(r io.Reader, delimiter rune) (dataframe.DataFrame, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.WithDelimiter(delimiter),
		dataframe.NaNValues(NullValues),
		dataframe.WithTypes(columnTypes),
		dataframe.DetectTypes(true),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

func ReadFile(path string, delimiter rune) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open source table: %w", err)
	}
	defer f.Close()

	df, err := Read(f, delimiter)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	log.Info().Str("path", path).Int("rows", df.Nrow()).Int("cols", df.Ncol()).Msg("source table loaded")
	return df, nil
}

// FileSource loads the source table from a path on every call.
type FileSource struct {
	Path      string
	Delimiter rune
}

func (s FileSource) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}
	return ReadFile(s.Path, s.Delimiter)
}
