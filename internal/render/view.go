// Package render turns a calculator snapshot into the text a page shows.
// Rendering is total: every visible string comes from the locale table on
// each call, so switching locale re-renders everything.
package render

import (
	"fmt"
	"strconv"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
)

// Images maps each exercise to its card image, relative to the static root.
var Images = map[calc.Exercise]string{
	calc.BenchPress: "images/bench.svg",
	calc.Squat:      "images/squat.svg",
	calc.Deadlift:   "images/dead.svg",
}

// PrecacheAssets lists what an offline cache should hold. The server only
// publishes this list; caching itself is the client's business.
var PrecacheAssets = []string{
	"/",
	"/static/styles.css",
	"/static/app.js",
	"/static/images/bench.svg",
	"/static/images/squat.svg",
	"/static/images/dead.svg",
	"/static/images/favicon.svg",
}

// carouselStep is the rotation between adjacent carousel items, in degrees.
const carouselStep = 120

// Links are the footer targets.
type Links struct {
	GitHub   string
	Email    string
	Feedback string
}

// Options carries the presentation inputs that live outside calc.State.
type Options struct {
	Theme       string
	ThemeIcon   string
	Status      string
	StatusError bool
	Links       Links
}

type CarouselItem struct {
	Exercise calc.Exercise `json:"exercise"`
	Name     string        `json:"name"`
	Image    string        `json:"image"`
	Alt      string        `json:"alt"`
	Angle    int           `json:"angle"`
	Selected bool          `json:"selected"`
	Index    int           `json:"index"`
}

type RepsOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type Form struct {
	WeightLabel     string       `json:"weight_label"`
	WeightAria      string       `json:"weight_aria"`
	WeightValue     string       `json:"weight_value"`
	RepsLabel       string       `json:"reps_label"`
	RepsAria        string       `json:"reps_aria"`
	RepsPlaceholder string       `json:"reps_placeholder"`
	RepsOptions     []RepsOption `json:"reps_options"`
	Submit          string       `json:"submit"`
}

// ResultCard is the rendered result panel and the content of a shared card.
type ResultCard struct {
	Heading   string `json:"heading"`
	Exercise  string `json:"exercise"`
	Inputs    string `json:"inputs"`
	OneRepMax string `json:"one_rep_max"`
	Image     string `json:"image"`
	ImageAlt  string `json:"image_alt"`
	Value     int    `json:"value"`
}

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Language struct {
	Code     calc.Locale `json:"code"`
	Label    string      `json:"label"`
	Selected bool        `json:"selected"`
}

// View is everything a page shows for one snapshot.
type View struct {
	Locale         calc.Locale    `json:"locale"`
	DocumentTitle  string         `json:"document_title"`
	Title          string         `json:"title"`
	SelectExercise string         `json:"select_exercise"`
	Selected       calc.Exercise  `json:"selected,omitempty"`
	Carousel       []CarouselItem `json:"carousel"`
	Form           Form           `json:"form"`
	Error          string         `json:"error,omitempty"`
	ErrorKind      string         `json:"error_kind,omitempty"`
	Result         *ResultCard    `json:"result,omitempty"`
	ShareLabel     string         `json:"share_label"`
	ExportLabel    string         `json:"export_label"`
	Status         string         `json:"status,omitempty"`
	StatusError    bool           `json:"status_error,omitempty"`
	Theme          string         `json:"theme"`
	ThemeIcon      string         `json:"theme_icon"`
	Footer         []Link         `json:"footer"`
	Languages      []Language     `json:"languages"`
}

var languageLabels = map[calc.Locale]string{
	calc.Korean:   "한국어",
	calc.English:  "English",
	calc.Japanese: "日本語",
}

// Render builds the full view for snap in its locale.
func Render(snap calc.Snapshot, opts Options) View {
	t := i18n.For(snap.Locale)

	v := View{
		Locale:         snap.Locale,
		DocumentTitle:  t.Title + " - " + t.TitleSuffix,
		Title:          t.Title,
		SelectExercise: t.SelectExercise,
		Selected:       snap.Input.Exercise,
		Carousel:       carousel(snap, t),
		Form:           form(snap.Input, t),
		Error:          t.ErrorMessage(snap.Error),
		ErrorKind:      snap.Error.String(),
		ShareLabel:     t.Share,
		ExportLabel:    t.Export,
		Status:         opts.Status,
		StatusError:    opts.StatusError,
		Theme:          opts.Theme,
		ThemeIcon:      opts.ThemeIcon,
		Footer: []Link{
			{Label: t.GitHub, Href: opts.Links.GitHub},
			{Label: t.Email, Href: emailHref(opts.Links.Email)},
			{Label: t.Feedback, Href: opts.Links.Feedback},
		},
	}
	for _, l := range calc.Locales {
		v.Languages = append(v.Languages, Language{Code: l, Label: languageLabels[l], Selected: l == snap.Locale})
	}
	if snap.Result != nil {
		card := Card(*snap.Result, t)
		v.Result = &card
	}
	return v
}

// Card renders a result in the given table. The numeric value comes from
// the result as computed; only the text depends on the locale.
func Card(res calc.Result, t i18n.Strings) ResultCard {
	name := t.ExerciseName(res.Exercise)
	return ResultCard{
		Heading:   t.Result,
		Exercise:  fmt.Sprintf("%s: %s", t.ResultExercise, name),
		Inputs:    fmt.Sprintf("%s: %skg, %s: %d", t.ResultWeight, res.WeightText, t.ResultReps, res.Reps),
		OneRepMax: fmt.Sprintf("%s: %dkg", t.Result1RM, res.OneRepMax),
		Image:     Images[res.Exercise],
		ImageAlt:  name,
		Value:     res.OneRepMax,
	}
}

func carousel(snap calc.Snapshot, t i18n.Strings) []CarouselItem {
	n := len(calc.Exercises)
	items := make([]CarouselItem, 0, n)
	for i, e := range calc.Exercises {
		name := t.ExerciseName(e)
		items = append(items, CarouselItem{
			Exercise: e,
			Name:     name,
			Image:    Images[e],
			Alt:      name,
			Angle:    ((i - snap.CarouselIndex + n) % n) * carouselStep,
			Selected: snap.Input.Exercise == e,
			Index:    i,
		})
	}
	return items
}

func form(in calc.Input, t i18n.Strings) Form {
	f := Form{
		WeightLabel:     t.Weight,
		WeightAria:      t.WeightAria,
		WeightValue:     in.Weight,
		RepsLabel:       t.Reps,
		RepsAria:        t.RepsAria,
		RepsPlaceholder: t.RepsSelect,
		Submit:          t.Submit,
	}
	for r := calc.MinReps; r <= calc.MaxReps; r++ {
		val := strconv.Itoa(r)
		f.RepsOptions = append(f.RepsOptions, RepsOption{Value: val, Selected: val == in.Reps})
	}
	return f
}

func emailHref(addr string) string {
	if addr == "" {
		return ""
	}
	return "mailto:" + addr
}
