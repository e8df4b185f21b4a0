package weather

import (
	"fmt"
	"strconv"
	"time"
)

const notAvailable = "N/A"

// Metric is one labelled value of the current-conditions panel.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CurrentView is the render-ready form of Current.
type CurrentView struct {
	Title       string   `json:"title"`
	LastUpdate  string   `json:"lastUpdate"`
	Coordinates string   `json:"coordinates,omitempty"`
	Description string   `json:"description,omitempty"`
	IconURL     string   `json:"iconUrl,omitempty"`
	Metrics     []Metric `json:"metrics"`
	Raw         Current  `json:"raw"`
}

// NewCurrentView formats the metrics panel. Missing values render as "N/A"
// and times are shown in the city's local clock.
func NewCurrentView(c Current) CurrentView {
	title := c.Name
	if title == "" {
		title = "Unknown"
	}
	if c.Country != "" {
		title = fmt.Sprintf("%s (%s)", title, c.Country)
	}

	lastUpdate := ""
	if c.Timestamp != nil {
		lastUpdate = FormatClock(c.Timestamp, c.TimezoneOffset)
	}

	var coords string
	if c.Lat != nil && c.Lon != nil {
		coords = fmt.Sprintf("Lat: %s  |  Lon: %s", formatPlain(*c.Lat), formatPlain(*c.Lon))
	}

	minMax := notAvailable
	if c.TempMinC != nil && c.TempMaxC != nil {
		minMax = fmt.Sprintf("%.1f / %.1f", *c.TempMinC, *c.TempMaxC)
	}

	sun := fmt.Sprintf("%s / %s",
		FormatClock(c.Sunrise, c.TimezoneOffset),
		FormatClock(c.Sunset, c.TimezoneOffset),
	)

	return CurrentView{
		Title:       title,
		LastUpdate:  lastUpdate,
		Coordinates: coords,
		Description: c.Description,
		IconURL:     c.IconURL(),
		Metrics: []Metric{
			{Label: "Temp (°C)", Value: formatOneDecimal(c.TempC)},
			{Label: "Feels (°C)", Value: formatOneDecimal(c.FeelsLikeC)},
			{Label: "Min / Max (°C)", Value: minMax},
			{Label: "Pressure (hPa)", Value: formatOptional(c.PressureHpa)},
			{Label: "Humidity (%)", Value: formatOptional(c.HumidityPct)},
			{Label: "Wind (m/s)", Value: formatOptional(c.WindSpeedMS)},
			{Label: "Clouds (%)", Value: formatOptional(c.CloudsPct)},
			{Label: "Sunrise / Sunset", Value: sun},
		},
		Raw: c,
	}
}

// Series is one line of a chart.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a titled set of series sharing the same local-time axis.
type Chart struct {
	Title  string      `json:"title"`
	XTitle string      `json:"xTitle"`
	YTitle string      `json:"yTitle"`
	Times  []time.Time `json:"times"`
	Series []Series    `json:"series"`
}

// ForecastView holds the "Temp vs Feels" and "Wind" charts.
type ForecastView struct {
	City        string `json:"city"`
	Temperature Chart  `json:"temperature"`
	Wind        Chart  `json:"wind"`
}

// NewForecastView builds the charts from the first points entries of f.
func NewForecastView(f Forecast, points int) ForecastView {
	name := f.City
	if name == "" {
		name = "Unknown"
	}

	items := f.Points
	if points >= 0 && len(items) > points {
		items = items[:points]
	}

	times := make([]time.Time, 0, len(items))
	temp := make([]float64, 0, len(items))
	feels := make([]float64, 0, len(items))
	wind := make([]float64, 0, len(items))
	for _, p := range items {
		times = append(times, CityTime(p.Timestamp, f.TimezoneOffset))
		temp = append(temp, p.TempC)
		feels = append(feels, p.FeelsLikeC)
		wind = append(wind, p.WindSpeedMS)
	}

	return ForecastView{
		City: name,
		Temperature: Chart{
			Title:  "Temperature forecast - " + name,
			XTitle: "Local time",
			YTitle: "°C",
			Times:  times,
			Series: []Series{
				{Name: "Temp", Values: temp},
				{Name: "Feels like", Values: feels},
			},
		},
		Wind: Chart{
			Title:  "Wind forecast - " + name,
			XTitle: "Local time",
			YTitle: "m/s",
			Times:  times,
			Series: []Series{
				{Name: "Wind", Values: wind},
			},
		},
	}
}

func formatOneDecimal(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f", *v)
}

func formatOptional(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return formatPlain(*v)
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
