package itinerary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// TripDays is the trip length in whole days, rounded up and never below one.
func TripDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, &types.InvalidDateRangeError{Start: start, End: end}
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	return max(days, 1), nil
}

// BuildPrompt renders the trip and the aggregated places and hotels into the generation
// prompt. The output depends only on its inputs.
func BuildPrompt(req types.TripRequest, agg types.Aggregation) (string, error) {
	days, err := TripDays(req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed %d-day itinerary for %d person(s) visiting %s with a total budget of $%s.\n",
		days, req.Persons, req.Destination(), formatAmount(req.Budget))
	fmt.Fprintf(&b, "Travel dates: %s to %s. Consider the season and typical weather for these dates.\n",
		req.StartDate.Format(types.DateLayout), req.EndDate.Format(types.DateLayout))
	fmt.Fprintf(&b, "Traveler interests: %s.\n", strings.Join(req.Interests, ", "))
	b.WriteString("For each day, provide a schedule with suggested hours for activities, places to visit, and things to do.\n")
	b.WriteString("Suggest free or low-cost activities where possible to help stay within the budget.\n")

	startDay := req.StartDate.Weekday()
	if len(agg.Places) > 0 {
		b.WriteString("\nPlaces of interest:\n")
		for i, p := range agg.Places {
			fmt.Fprintf(&b, "%d. %s", i+1, displayName(p))
			if p.Category != "" {
				fmt.Fprintf(&b, " [%s]", p.Category)
			}
			fmt.Fprintf(&b, " - rating: %s (%d reviews)", formatRating(p.Rating), p.ReviewCount)
			fmt.Fprintf(&b, ", price: %s", types.PriceTierLabel(p.PriceTier))
			if hours := p.OpeningHoursOn(startDay); hours != "" {
				fmt.Fprintf(&b, ", hours on %s: %s", startDay, hours)
			}
			b.WriteString("\n")
		}
	}

	if len(agg.Hotels) > 0 {
		b.WriteString("\nHotel options:\n")
		for i, h := range agg.Hotels {
			fmt.Fprintf(&b, "%d. %s - rating: %s (%d reviews), price: %s",
				i+1, displayName(h.Place), formatRating(h.Rating), h.ReviewCount, h.PriceTierLabel())
			if h.NightlyRate != nil {
				fmt.Fprintf(&b, ", from %s %s per night", formatAmount(*h.NightlyRate), currency(h.Currency))
			}
			if h.Website != "" {
				fmt.Fprintf(&b, ", website: %s", h.Website)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\nNo specific hotels were found within the budget, so focus on the itinerary and activities.\n")
	}

	if len(agg.Places) > 0 || len(agg.Hotels) > 0 {
		b.WriteString("\nOnly recommend places and hotels from the lists above. Do not invent other venues.\n")
	}
	b.WriteString("Format the itinerary day by day (Day 1, Day 2, ...), with times and brief descriptions for each activity.")
	return b.String(), nil
}

func displayName(p types.Place) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func formatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func currency(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
