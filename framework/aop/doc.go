// Package aop layers method interception on top of the container.
//
// A bean opts in by implementing Proxyable and carrying the "around"
// annotation naming a Handler bean. The AroundInterceptor swaps the bean for
// its proxy right after construction and maps the proxy back to the
// original so field injection still lands on the real struct.
//
//	reg.Register(
//	    aop.Blueprint(),
//	    container.Component("loggingHandler", aop.NewLoggingHandler, container.Ref("logger")),
//	    container.Component("greeter", NewGreeter).Annotate(aop.AnnotationAround, "loggingHandler"),
//	)
//
// Handlers compose with Chain; Before and After cover the common cases.
package aop
