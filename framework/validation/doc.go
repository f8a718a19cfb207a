// Package validation checks beans and request input with
// github.com/go-playground/validator/v10.
//
// # Beans
//
// Register the Interceptor and every bean whose struct declares `validate`
// tags is checked after its init hook. A failure aborts container start.
//
//	type MailConfig struct {
//	    Host string `validate:"required,hostname"`
//	    Port int    `validate:"gte=1,lte=65535"`
//	}
//
//	reg.Register(validation.Blueprint())
//
// # Input
//
//	v := validation.New()
//	if errs := v.Var("name", name, "required,alpha,max=32"); errs != nil {
//	    res.ValidationError(errs)
//	}
//
// # Error Bag
//
// Errors serialises to:
//
//	{
//	  "errors": {
//	    "email": ["The email must be a valid email address."],
//	    "age":   ["The age must be greater than or equal to 18."]
//	  }
//	}
package validation
