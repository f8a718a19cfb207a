// Package container builds an object graph from an enumerated set of
// blueprints, wires dependencies, lets interceptors substitute beans and
// runs ordered teardown.
//
// # Overview
//
// A Blueprint describes one bean: a unique name, a declared type and one
// creation strategy (constructor, factory method on another bean, or a
// pre-built instance). Blueprints are registered in a Registry, directly or
// through ServiceProviders, and Start builds everything in one pass.
//
// # Container Lifecycle
//
//  1. Register: blueprints are validated and indexed by name
//  2. Configuration beans and factory sources are built
//  3. Interceptor beans are built and form the pipeline
//  4. Every other bean is built in (order, name) order
//  5. Fields and setters are injected on the original instances
//  6. Init hooks run, then AfterInit interceptors
//  7. Close runs destroy hooks
//
// # Blueprints
//
//	// Constructor: returns T or (T, error), one Param per argument
//	container.Component("repo", NewRepo, container.Ref("conn")).WithOrder(10)
//
//	// Configuration: built first, only Value params
//	container.Configuration("db", NewDBConfig, container.Value("${db.url:sqlite::memory:}")).WithOrder(0)
//
//	// Factory method: a method expression on another bean
//	container.Bean("conn", "db", (*DBConfig).Open)
//
//	// Pre-built value
//	container.Instance("clock", systemClock{})
//
// # Parameters
//
//	container.Value("${app.title:Winter}")   // config, converted to the argument type
//	container.Ref("repo")                    // bean by name
//	container.Auto()                         // bean by argument type, primary wins
//	container.Auto().Optional()              // zero value when nothing matches
//
// # Field and setter injection
//
//	type Service struct {
//	    Title string `value:"${app.title}"`
//	    Repo  *Repo  `inject:"repo"`
//	    Cache Cache  `inject:",optional"`
//	}
//
//	container.Component("svc", NewService).Setter("SetMailer", container.Auto())
//
// # Interceptors
//
// Beans whose declared type implements BeforeInitInterceptor, OriginResolver
// or AfterInitInterceptor form the pipeline. They may return a substitute
// (usually a decorator); injection always lands on the original.
//
// # Resolving
//
//	repo, err := container.GetNamed[*Repo](c, "repo")
//	cats, err := container.GetAll[Cat](c)
//	greeter := container.MustGet[Greeter](c)
package container
