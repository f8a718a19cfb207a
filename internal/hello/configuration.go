package hello

import (
	"time"
)

// Configuration holds the hello.* settings and produces the clock bean.
type Configuration struct {
	Greeting string `validate:"required,max=64"`
	Zone     string `validate:"required,timezone"`
}

// NewConfiguration is the constructor for the "helloConfiguration" bean.
func NewConfiguration(greeting, zone string) *Configuration {
	return &Configuration{Greeting: greeting, Zone: zone}
}

// Clock is the factory method behind the "clock" bean.
func (c *Configuration) Clock() (Clock, error) {
	loc, err := time.LoadLocation(c.Zone)
	if err != nil {
		return nil, err
	}
	return zoneClock{loc: loc}, nil
}

// Clock tells the time in the configured zone.
type Clock interface {
	Now() time.Time
}

type zoneClock struct {
	loc *time.Location
}

func (z zoneClock) Now() time.Time { return time.Now().In(z.loc) }
