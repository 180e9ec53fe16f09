package wordcloud_test

import (
	"fmt"

	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/layout/wordcloud"
	"github.com/matzehuels/slipmap/pkg/slips"
)

func ExampleLayout() {
	values := slips.NewValues(
		slips.Entry{Label: "review", Seconds: 7200},
		slips.Entry{Label: "email", Seconds: 1800},
	)

	res, _ := wordcloud.Layout(values, layout.Rect{W: 800, H: 400},
		wordcloud.WithFontRange(20, 60),
		wordcloud.WithScale(wordcloud.ScaleLinear),
	)
	for _, p := range res.Placements {
		fmt.Printf("%s %.0fpt\n", p.Label, p.FontSize)
	}
	fmt.Println("dropped:", len(res.Dropped))
	// Output:
	// review 60pt
	// email 20pt
	// dropped: 0
}
