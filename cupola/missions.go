package cupola

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Mission is an Earth-observation target to photograph from the Cupola.
type Mission struct {
	ID              string  `yaml:"id"`
	Title           string  `yaml:"title"`
	Category        string  `yaml:"category"`
	Latitude        float64 `yaml:"lat"`
	Longitude       float64 `yaml:"lon"`
	Description     string  `yaml:"description"`
	ScientificValue string  `yaml:"scientific_value"`
}

// Photo is the astronaut photograph shown after a capture.
type Photo struct {
	URL         string
	Description string
	GatewayLink string
}

// FallbackMissions are flown when no event feed is available.
func FallbackMissions() []Mission {
	return []Mission{
		{
			ID:              "fallback-1",
			Title:           "California Wildfire Complex",
			Category:        "Wildfires",
			Latitude:        37.0,
			Longitude:       -119.0,
			Description:     "Monitor and photograph wildfire activity in California",
			ScientificValue: "Your images help scientists track fire spread patterns and assess the impact on air quality and ecosystems. This data is critical for disaster response and climate research.",
		},
		{
			ID:              "fallback-2",
			Title:           "Atlantic Hurricane Formation",
			Category:        "Severe Storms",
			Latitude:        25.0,
			Longitude:       -70.0,
			Description:     "Monitor and photograph tropical storm development in the Atlantic",
			ScientificValue: "Your photography provides valuable data for meteorologists to predict storm intensity and path, helping coastal communities prepare for potential impacts.",
		},
		{
			ID:              "fallback-3",
			Title:           "Amazon Deforestation",
			Category:        "Deforestation",
			Latitude:        -3.0,
			Longitude:       -60.0,
			Description:     "Monitor and photograph deforestation patterns in the Amazon Basin",
			ScientificValue: "These images help environmental agencies track illegal logging and assess the impact on global climate systems and biodiversity.",
		},
	}
}

var scientificValues = map[string]string{
	"Wildfires":            "Your images help scientists track fire spread patterns and assess the impact on air quality and ecosystems. This data is critical for disaster response teams and climate research.",
	"Severe Storms":        "Your photography provides valuable data for meteorologists to predict storm intensity and path, helping coastal communities prepare for potential impacts.",
	"Volcanoes":            "These observations help volcanologists monitor volcanic activity and assess hazards, protecting nearby populations and air traffic.",
	"Sea and Lake Ice":     "Your images contribute to understanding polar ice dynamics and climate change, essential for predicting sea level rise.",
	"Drought":              "This data helps water resource managers and agricultural planners respond to drought conditions affecting millions of people.",
	"Floods":               "Real-time flood imagery assists emergency responders in coordinating rescue operations and assessing damage.",
	"Dust and Haze":        "These observations help scientists track air quality and atmospheric conditions affecting human health.",
	"Earthquakes":          "Post-earthquake imagery aids in damage assessment and helps coordinate relief efforts.",
	"Landslides":           "Your photography helps geologists study slope stability and assess risks to communities.",
	"Manmade":              "These observations document human impacts on the environment, from oil spills to urban growth.",
	"Snow":                 "Snow cover data is essential for water resource management and understanding seasonal climate patterns.",
	"Temperature Extremes": "Your images document heat waves and cold snaps, helping researchers understand climate variability.",
	"Water Color":          "Ocean color observations help scientists monitor water quality, harmful algal blooms, and marine ecosystem health.",
}

const defaultScientificValue = "Your photography contributes to Earth observation science, helping researchers monitor and understand our changing planet."

// ScientificValue explains why an event category is worth photographing.
func ScientificValue(category string) string {
	if v, ok := scientificValues[category]; ok {
		return v
	}
	return defaultScientificValue
}

var photos = map[string]Photo{
	"Wildfires": {
		URL:         "https://eol.jsc.nasa.gov/DatabaseImages/ESC/small/ISS067/ISS067-E-204254.JPG",
		Description: "Wildfire smoke plume photographed from ISS",
		GatewayLink: "https://eol.jsc.nasa.gov/SearchPhotos/photo.pl?mission=ISS067&roll=E&frame=204254",
	},
	"Severe Storms": {
		URL:         "https://eol.jsc.nasa.gov/DatabaseImages/ESC/small/ISS065/ISS065-E-190345.JPG",
		Description: "Hurricane photographed from ISS",
		GatewayLink: "https://eol.jsc.nasa.gov/SearchPhotos/photo.pl?mission=ISS065&roll=E&frame=190345",
	},
	"Volcanoes": {
		URL:         "https://eol.jsc.nasa.gov/DatabaseImages/ESC/small/ISS068/ISS068-E-52467.JPG",
		Description: "Volcanic eruption captured from orbit",
		GatewayLink: "https://eol.jsc.nasa.gov/SearchPhotos/photo.pl?mission=ISS068&roll=E&frame=52467",
	},
	"Sea and Lake Ice": {
		URL:         "https://eol.jsc.nasa.gov/DatabaseImages/ESC/small/ISS066/ISS066-E-148326.JPG",
		Description: "Arctic sea ice patterns from ISS",
		GatewayLink: "https://eol.jsc.nasa.gov/SearchPhotos/photo.pl?mission=ISS066&roll=E&frame=148326",
	},
}

var defaultPhoto = Photo{
	URL:         "https://eol.jsc.nasa.gov/DatabaseImages/ESC/small/ISS069/ISS069-E-18879.JPG",
	Description: "Earth observation from International Space Station",
	GatewayLink: "https://eol.jsc.nasa.gov/SearchPhotos/",
}

// PhotoFor returns the example photograph for a category.
func PhotoFor(category string) Photo {
	if p, ok := photos[category]; ok {
		return p
	}
	return defaultPhoto
}

// ParseMissions decodes a YAML list of missions. Missing scientific values
// are filled in from the category.
func ParseMissions(r io.Reader) ([]Mission, error) {
	var ms []Mission
	if err := yaml.NewDecoder(r).Decode(&ms); err != nil {
		return nil, fmt.Errorf("decode missions: %w", err)
	}
	for i := range ms {
		m := &ms[i]
		if m.ID == "" || m.Title == "" {
			return nil, fmt.Errorf("mission %d: id and title are required", i)
		}
		if m.Latitude < -90 || m.Latitude > 90 || m.Longitude < -180 || m.Longitude > 180 {
			return nil, fmt.Errorf("mission %s: coordinates (%v, %v) out of range", m.ID, m.Latitude, m.Longitude)
		}
		if m.ScientificValue == "" {
			m.ScientificValue = ScientificValue(m.Category)
		}
	}
	return ms, nil
}

// LoadMissions reads missions from a YAML file.
func LoadMissions(path string) ([]Mission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open missions: %w", err)
	}
	defer f.Close()
	return ParseMissions(f)
}
