package httpserver

import (
	"strings"

	appai "github.com/bryanwahyu/genefit/internal/application/ai"
	"github.com/bryanwahyu/genefit/internal/application/interpret"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
	"github.com/bryanwahyu/genefit/internal/domain/session"
	"github.com/bryanwahyu/genefit/internal/domain/species"
)

// Screen names accepted by GET /v1/screens/{screen}.
const (
	ScreenHome     = "home"
	ScreenAnalysis = "analysis"
	ScreenResults  = "results"
	ScreenSignIn   = "signin"
)

// scrollTarget is the element the client brings into view after uploads.
const scrollTarget = "upload-area"

type Card struct {
	Number      string `json:"number,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type HomeView struct {
	Screen   string               `json:"screen"`
	Title    string               `json:"title"`
	Subtitle string               `json:"subtitle"`
	Features []Card               `json:"features"`
	Steps    []Card               `json:"steps"`
	User     *session.UserSession `json:"user"`
}

type AnalysisView struct {
	Screen         string               `json:"screen"`
	Title          string               `json:"title"`
	Subtitle       string               `json:"subtitle"`
	Samples        []samples.Sample     `json:"samples"`
	SlotsLeft      int                  `json:"slots_left"`
	MaxFiles       int                  `json:"max_files"`
	AcceptedTypes  []string             `json:"accepted_types"`
	HasResults     bool                 `json:"has_results"`
	ProfileMessage string               `json:"profile_message"`
	User           *session.UserSession `json:"user"`
}

type SectionView struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

type ResultsView struct {
	Screen      string               `json:"screen"`
	ID          string               `json:"id"`
	Species     species.Info         `json:"species"`
	Intro       string               `json:"intro"`
	Preamble    string               `json:"preamble,omitempty"`
	Sections    []SectionView        `json:"sections"`
	Fallback    bool                 `json:"fallback"`
	Closing     string               `json:"closing"`
	SampleCount int                  `json:"sample_count"`
	ReportURL   string               `json:"report_url,omitempty"`
	Raw         string               `json:"raw"`
	User        *session.UserSession `json:"user"`
}

type SignInView struct {
	Screen         string               `json:"screen"`
	Title          string               `json:"title"`
	Subtitle       string               `json:"subtitle"`
	GoogleClientID string               `json:"google_client_id"`
	User           *session.UserSession `json:"user"`
}

func userOrNil(u session.UserSession) *session.UserSession {
	if u.IsZero() {
		return nil
	}
	return &u
}

func homeView(u session.UserSession) HomeView {
	return HomeView{
		Screen:   ScreenHome,
		Title:    "Unlock Your Genetic Potential",
		Subtitle: "Fitness AI analyzes your DNA to create a fitness and nutrition plan that's uniquely yours. Stop guessing, start optimizing.",
		Features: []Card{
			{Title: "Personalized Workouts", Description: "AI crafts workout routines based on your genetic muscle composition, endurance markers, and recovery speed."},
			{Title: "Optimized Nutrition", Description: "Discover the ideal macronutrient ratio, vitamin needs, and foods that work best for your body's unique profile."},
			{Title: "Proactive Prevention", Description: "Identify genetic predispositions to certain injuries or deficiencies and get preventative exercises and nutritional advice."},
		},
		Steps: []Card{
			{Number: "1", Title: "Scan Your Report", Description: "Use your device's camera to securely scan your DNA report. Our platform analyzes the image directly without long-term storage."},
			{Number: "2", Title: "AI Analysis", Description: "Our advanced AI decodes genetic markers related to fitness, nutrition, and wellness from the image in minutes."},
			{Number: "3", Title: "Receive Your Plan", Description: "Get your dynamic, hyper-personalized fitness and nutrition plan on your dashboard. Your plan evolves as you make progress."},
		},
		User: userOrNil(u),
	}
}

func analysisView(list []samples.Sample, maxFiles int, hasResults bool, u session.UserSession) AnalysisView {
	return AnalysisView{
		Screen:         ScreenAnalysis,
		Title:          "DNA Analysis Suite",
		Subtitle:       "Upload multiple DNA reports for comprehensive genetic analysis and personalized recommendations",
		Samples:        list,
		SlotsLeft:      max(maxFiles-len(list), 0),
		MaxFiles:       maxFiles,
		AcceptedTypes:  []string{"image/png", "image/jpeg", "image/webp"},
		HasResults:     hasResults,
		ProfileMessage: "Enter your personal information to generate a customized basic diet plan",
		User:           userOrNil(u),
	}
}

var sectionTitles = map[species.Category][3]string{
	species.CategoryHuman:  {"Workout Routines", "Optimized Nutrition", "Hereditary Disease Prevention"},
	species.CategoryAnimal: {"Physical Characteristics", "Dietary Requirements", "Health Considerations"},
}

func resultsView(r *appai.Report, u session.UserSession) ResultsView {
	titles, ok := sectionTitles[r.Species.Category]
	if !ok {
		titles = sectionTitles[species.CategoryHuman]
	}
	return ResultsView{
		Screen:  ScreenResults,
		ID:      r.ID,
		Species: r.Species,
		Intro:   "Genetic analysis complete. Scroll to discover insights.",
		Sections: []SectionView{
			{Key: "physical", Title: titles[0], Paragraphs: paragraphs(r.Sections.Physical)},
			{Key: "nutrition", Title: titles[1], Paragraphs: paragraphs(r.Sections.Nutrition)},
			{Key: "health", Title: titles[2], Paragraphs: paragraphs(r.Sections.Health)},
		},
		Preamble:    interpret.CleanText(r.Sections.Unclassified),
		Fallback:    r.Sections.Fallback,
		Closing:     "Your comprehensive genetic analysis has been completed.",
		SampleCount: r.SampleCount,
		ReportURL:   r.ReportURL,
		Raw:         r.Result,
		User:        userOrNil(u),
	}
}

// paragraphs splits a section on blank lines and strips markdown from each.
func paragraphs(section string) []string {
	out := []string{}
	for _, p := range strings.Split(section, "\n\n") {
		if p = interpret.CleanText(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func signInView(clientID string, u session.UserSession) SignInView {
	return SignInView{
		Screen:         ScreenSignIn,
		Title:          "Welcome Back",
		Subtitle:       "Sign in with Google to access your personalized plans.",
		GoogleClientID: clientID,
		User:           userOrNil(u),
	}
}
