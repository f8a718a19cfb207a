package routing

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/container"
	gohttp "github.com/km-arc/go-winter/framework/http"
)

// Controller beans declare their own routes.
//
//	func (c *HelloController) Routes(r *routing.Router) {
//	    r.Get("/hello/{name}", c.Hello)
//	}
type Controller interface {
	Routes(r *Router)
}

// Mount adds the routes of every Controller bean, in (order, name) order.
func Mount(c *container.Container, r *Router) (int, error) {
	controllers, err := container.GetAll[Controller](c)
	if err != nil {
		return 0, err
	}
	for _, ctrl := range controllers {
		ctrl.Routes(r)
	}
	c.Logger().Debug("controllers mounted", zap.Int("count", len(controllers)))
	return len(controllers), nil
}

// ── Bean inspection ───────────────────────────────────────────────────────────

// BeanInfo is the JSON view of one blueprint.
type BeanInfo struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Order       int               `json:"order"`
	Primary     bool              `json:"primary"`
	Instance    string            `json:"instance"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Describe lists every blueprint sorted by (order, name).
func Describe(c *container.Container) []BeanInfo {
	bps := c.Registry().Sorted()
	out := make([]BeanInfo, 0, len(bps))
	for _, bp := range bps {
		out = append(out, describe(bp))
	}
	return out
}

func describe(bp *container.Blueprint) BeanInfo {
	info := BeanInfo{
		Name:     bp.Name(),
		Type:     bp.Type().String(),
		Order:    bp.Order(),
		Primary:  bp.Primary(),
		Instance: typeName(bp.Instance()),
	}
	for _, key := range annotationKeys {
		if v, ok := bp.Annotation(key); ok {
			if info.Annotations == nil {
				info.Annotations = make(map[string]string)
			}
			info.Annotations[key] = v
		}
	}
	return info
}

// annotationKeys are the annotations exposed by the inspection endpoint.
var annotationKeys = []string{"around", "description"}

// BeansController serves GET /health, GET /beans and GET /beans/{name}.
type BeansController struct {
	c *container.Container
}

// NewBeansController is the constructor for the "beansController" bean.
func NewBeansController(c *container.Container) *BeansController {
	return &BeansController{c: c}
}

func (b *BeansController) Routes(r *Router) {
	r.Get("/health", b.Health)
	r.Get("/beans", b.Index)
	r.Get("/beans/{name}", b.Show)
}

func (b *BeansController) Health(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{
		"status":    "ok",
		"container": b.c.ID(),
		"beans":     b.c.Registry().Len(),
	})
}

func (b *BeansController) Index(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(Describe(b.c))
}

func (b *BeansController) Show(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	name := Param(r, "name")
	bp, ok := b.c.Registry().FindByName(name)
	if !ok {
		res.NotFound("no bean named " + name)
		return
	}
	res.Success(describe(bp))
}

func typeName(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}
