package hello

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-winter/framework/aop"
)

// ErrNoName is returned for an empty name.
var ErrNoName = errors.New("hello: name is required")

// Greeter builds greetings.
type Greeter interface {
	Greet(name string) (string, error)
}

type greeter struct {
	Clock    Clock  `inject:"clock"`
	Greeting string `value:"${hello.greeting:Hello}"`
	Suffix   string `value:"${hello.suffix:!}"`
}

// NewGreeter is the constructor for the "greeter" bean.
func NewGreeter() Greeter { return &greeter{} }

func (g *greeter) Greet(name string) (string, error) {
	if name == "" {
		return "", ErrNoName
	}
	return fmt.Sprintf("%s, %s%s It is %s.", g.Greeting, name, g.Suffix, g.Clock.Now().Format("15:04 MST")), nil
}

func (g *greeter) Proxy(h aop.Handler, bean string) any {
	return &greeterProxy{target: g, h: h, bean: bean}
}

type greeterProxy struct {
	target *greeter
	h      aop.Handler
	bean   string
}

func (p *greeterProxy) Greet(name string) (string, error) {
	return aop.Intercept(p.h, p.bean, p.target, "Greet", []any{name}, func() (string, error) {
		return p.target.Greet(name)
	})
}
