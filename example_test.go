package fundchat_test

import (
	"context"
	"fmt"

	"github.com/aretw0/fundchat"
	"github.com/aretw0/fundchat/pkg/domain"
	"github.com/aretw0/fundchat/pkg/funds"
)

// ExampleNew shows the mention flow: detect, fetch once, filter, select.
func ExampleNew() {
	catalog := funds.NewCatalog([]string{"BlueFund", "BlueChip", "RedFund"}, nil)
	a := fundchat.New(catalog)

	view, done := a.Input(context.Background(), "tell me about @Blu")
	fmt.Println(view.Visible, view.NeedsFetch)

	<-done
	view = a.Mentions().View()
	fmt.Println(view.Filtered)
	fmt.Println(a.Select(view.Filtered[0], "tell me about @Blu"))

	// Output:
	// false true
	// [BlueFund BlueChip]
	// tell me about @BlueFund
}

func ExampleAssistant_Type() {
	done := make(chan string, 1)
	a := fundchat.New(nil,
		fundchat.WithDelays(0, 0),
		fundchat.WithObserver(func(f domain.Frame) {
			if f.Complete {
				done <- f.Text
			}
		}),
	)

	a.Type("Hello", "world")
	fmt.Printf("%q\n", <-done)

	// Output: "Hello\n\nworld"
}
