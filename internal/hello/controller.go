package hello

import (
	"net/http"
	"strconv"
	"strings"

	gohttp "github.com/km-arc/go-winter/framework/http"
	"github.com/km-arc/go-winter/framework/routing"
	"github.com/km-arc/go-winter/framework/validation"
)

// Controller serves GET /hello/{name}[?shout=true].
type Controller struct {
	Greeter Greeter `inject:"greeter"`

	v *validation.Validator
}

// NewController is the constructor for the "helloController" bean.
func NewController(v *validation.Validator) *Controller {
	return &Controller{v: v}
}

func (c *Controller) Routes(r *routing.Router) {
	r.Get("/hello/{name}", c.Hello)
}

func (c *Controller) Hello(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	req := gohttp.NewRequest(r)
	name := req.RouteParam("name")
	if errs := c.v.Var("name", name, "required,alpha,max=32"); errs != nil {
		res.ValidationError(errs)
		return
	}
	shout := req.Query("shout", "false")
	if errs := c.v.Var("shout", shout, "boolean"); errs != nil {
		res.ValidationError(errs)
		return
	}
	msg, err := c.Greeter.Greet(name)
	if err != nil {
		res.Fail(err)
		return
	}
	if loud, _ := strconv.ParseBool(shout); loud {
		msg = strings.ToUpper(msg)
	}
	res.Success(map[string]string{"message": msg})
}
