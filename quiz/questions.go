package quiz

// Question is one Earth observation prompt.
type Question struct {
	Image   string   `yaml:"image"`
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Correct int      `yaml:"correct"`
	Fact    string   `yaml:"fact"`
}

// CorrectOption returns the text of the correct answer.
func (q Question) CorrectOption() string {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return ""
	}
	return q.Options[q.Correct]
}

// DefaultQuestions returns the built-in question bank.
func DefaultQuestions() []Question {
	return []Question{
		{
			Image:   "https://images-assets.nasa.gov/image/iss065e092111/iss065e092111~medium.jpg",
			Prompt:  "What natural phenomenon is shown in this image?",
			Options: []string{"Hurricane", "Tornado", "Aurora Borealis", "Volcano"},
			Correct: 2,
			Fact:    "The Aurora Borealis (Northern Lights) is caused by solar particles interacting with Earth's magnetic field, creating stunning light displays visible from the ISS!",
		},
		{
			Image:   "https://images-assets.nasa.gov/image/iss063e041862/iss063e041862~medium.jpg",
			Prompt:  "Which geographical feature is visible in this image?",
			Options: []string{"Amazon Rainforest", "Sahara Desert", "Great Barrier Reef", "Himalayan Mountains"},
			Correct: 1,
			Fact:    "The Sahara Desert is the largest hot desert in the world, covering much of North Africa. From space, its distinctive golden color is easily recognizable!",
		},
		{
			Image:   "https://images-assets.nasa.gov/image/iss059e119250/iss059e119250~medium.jpg",
			Prompt:  "What do you see in this image taken from the ISS?",
			Options: []string{"City Lights", "Ocean", "Forest Fire", "Coral Reef"},
			Correct: 0,
			Fact:    "City lights from space reveal human activity patterns. Bright clusters show major metropolitan areas, and the grid patterns help astronauts identify cities!",
		},
		{
			Image:   "https://images-assets.nasa.gov/image/iss063e006024/iss063e006024~medium.jpg",
			Prompt:  "This image shows which type of weather system?",
			Options: []string{"Snowstorm", "Tropical Cyclone", "Thunderstorm", "Dust Storm"},
			Correct: 1,
			Fact:    "Tropical cyclones (hurricanes/typhoons) are massive rotating storm systems. From space, astronauts can clearly see the eye at the center of these powerful storms!",
		},
		{
			Image:   "https://images-assets.nasa.gov/image/iss064e006661/iss064e006661~medium.jpg",
			Prompt:  "What is this distinctive geological formation?",
			Options: []string{"Grand Canyon", "Mount Everest", "Great Rift Valley", "Nile Delta"},
			Correct: 3,
			Fact:    "The Nile Delta is where the Nile River spreads out and drains into the Mediterranean Sea. Its fan-like shape is clearly visible from space!",
		},
	}
}
