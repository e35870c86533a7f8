// Package i18n holds the display strings for every supported locale.
package i18n

import "github.com/claude/onerm/internal/calc"

// Strings is the full set of keys a page render needs. Every locale fills
// every field; TestTablesComplete enforces it.
type Strings struct {
	Title       string
	TitleSuffix string

	SelectExercise string
	Weight         string
	Reps           string
	RepsSelect     string
	WeightAria     string
	RepsAria       string
	Submit         string

	Result         string
	ResultExercise string
	ResultWeight   string
	ResultReps     string
	Result1RM      string

	ErrorSelectExercise string
	ErrorWeight         string
	ErrorReps           string

	Bench    string
	Squat    string
	Deadlift string

	Share        string
	Export       string
	ShareTitle   string
	ShareText    string
	Shared       string
	LinkCopied   string
	ShareFailed  string
	Exported     string
	Downloaded   string
	ExportFailed string

	GitHub   string
	Email    string
	Feedback string
}

var tables = map[calc.Locale]Strings{
	calc.Korean: {
		Title:               "1RM 계산기",
		TitleSuffix:         "최대 중량 쉽게 계산",
		SelectExercise:      "운동 선택",
		Weight:              "무게(kg)",
		Reps:                "횟수",
		RepsSelect:          "선택",
		WeightAria:          "무게(kg) 입력",
		RepsAria:            "횟수 선택",
		Submit:              "입력 완료",
		Result:              "예상 1RM 결과",
		ResultExercise:      "운동",
		ResultWeight:        "무게",
		ResultReps:          "횟수",
		Result1RM:           "예상 1RM",
		ErrorSelectExercise: "운동을 선택해주세요.",
		ErrorWeight:         "무게는 양수로 입력해주세요.",
		ErrorReps:           "횟수는 1~10 중에서 선택해주세요.",
		Bench:               "벤치프레스",
		Squat:               "스쿼트",
		Deadlift:            "데드리프트",
		Share:               "공유하기",
		Export:              "내보내기",
		ShareTitle:          "1RM 계산 결과",
		ShareText:           "나의 1RM 계산 결과를 확인하세요!",
		Shared:              "공유가 완료되었습니다.",
		LinkCopied:          "링크가 복사되었습니다!",
		ShareFailed:         "공유에 실패했습니다. 다시 시도해주세요.",
		Exported:            "결과 카드를 공유했습니다.",
		Downloaded:          "결과 카드를 저장했습니다.",
		ExportFailed:        "내보내기에 실패했습니다. 다시 시도해주세요.",
		GitHub:              "깃허브",
		Email:               "이메일 문의",
		Feedback:            "피드백 남기기",
	},
	calc.English: {
		Title:               "1RM Calculator",
		TitleSuffix:         "Estimate your max with ease",
		SelectExercise:      "Select Exercise",
		Weight:              "Weight (kg)",
		Reps:                "Reps",
		RepsSelect:          "Select",
		WeightAria:          "Enter weight (kg)",
		RepsAria:            "Select reps",
		Submit:              "Submit",
		Result:              "Estimated 1RM Result",
		ResultExercise:      "Exercise",
		ResultWeight:        "Weight",
		ResultReps:          "Reps",
		Result1RM:           "Estimated 1RM",
		ErrorSelectExercise: "Please select an exercise.",
		ErrorWeight:         "Please enter a positive weight.",
		ErrorReps:           "Please select reps between 1 and 10.",
		Bench:               "Bench Press",
		Squat:               "Squat",
		Deadlift:            "Deadlift",
		Share:               "Share",
		Export:              "Export",
		ShareTitle:          "1RM Result",
		ShareText:           "Check out my 1RM result!",
		Shared:              "Shared successfully.",
		LinkCopied:          "Link copied!",
		ShareFailed:         "Sharing failed. Please try again.",
		Exported:            "Result card shared.",
		Downloaded:          "Result card saved.",
		ExportFailed:        "Export failed. Please try again.",
		GitHub:              "GitHub",
		Email:               "Email",
		Feedback:            "Feedback",
	},
	calc.Japanese: {
		Title:               "1RM計算機",
		TitleSuffix:         "最大重量をかんたん計算",
		SelectExercise:      "種目を選択",
		Weight:              "重量(kg)",
		Reps:                "回数",
		RepsSelect:          "選択",
		WeightAria:          "重量(kg)を入力",
		RepsAria:            "回数を選択",
		Submit:              "入力完了",
		Result:              "予想1RM結果",
		ResultExercise:      "種目",
		ResultWeight:        "重量",
		ResultReps:          "回数",
		Result1RM:           "予想1RM",
		ErrorSelectExercise: "種目を選択してください。",
		ErrorWeight:         "重量は正の数で入力してください。",
		ErrorReps:           "回数は1～10の間で選択してください。",
		Bench:               "ベンチプレス",
		Squat:               "スクワット",
		Deadlift:            "デッドリフト",
		Share:               "共有",
		Export:              "書き出し",
		ShareTitle:          "1RM計算結果",
		ShareText:           "私の1RM計算結果をチェック！",
		Shared:              "共有しました。",
		LinkCopied:          "リンクをコピーしました！",
		ShareFailed:         "共有に失敗しました。もう一度お試しください。",
		Exported:            "結果カードを共有しました。",
		Downloaded:          "結果カードを保存しました。",
		ExportFailed:        "書き出しに失敗しました。もう一度お試しください。",
		GitHub:              "ギットハブ",
		Email:               "メール",
		Feedback:            "フィードバック",
	},
}

// For returns the table for l, falling back to the default locale.
func For(l calc.Locale) Strings {
	if t, ok := tables[l]; ok {
		return t
	}
	return tables[calc.DefaultLocale]
}

// ExerciseName returns the localized name of e.
func (s Strings) ExerciseName(e calc.Exercise) string {
	switch e {
	case calc.BenchPress:
		return s.Bench
	case calc.Squat:
		return s.Squat
	case calc.Deadlift:
		return s.Deadlift
	default:
		return string(e)
	}
}

// ErrorMessage returns the inline message for k, or "" for NoError.
func (s Strings) ErrorMessage(k calc.ErrorKind) string {
	switch k {
	case calc.MissingExercise:
		return s.ErrorSelectExercise
	case calc.InvalidWeight:
		return s.ErrorWeight
	case calc.InvalidReps:
		return s.ErrorReps
	default:
		return ""
	}
}
