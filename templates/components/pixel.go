package components

import (
	"context"

	"mavenestudio/middleware"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const pixelLoader = `!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?` +
	`n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;` +
	`n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];` +
	`s.parentNode.insertBefore(t,s)}(window,document,'script','https://connect.facebook.net/en_US/fbevents.js');`

// inlineScript is a nonce-carrying script holding trusted code
func inlineScript(ctx context.Context, code string) g.Node {
	return h.Script(g.Attr("nonce", middleware.GetNonce(ctx)), g.Raw(code))
}

// MetaPixel loads the pixel and tracks a PageView. Nil when pixelID is empty.
func MetaPixel(ctx context.Context, pixelID string) g.Node {
	if pixelID == "" {
		return nil
	}
	return inlineScript(ctx, pixelLoader+"fbq('init',"+JSON(pixelID)+");fbq('track','PageView');")
}

// LeadConversion fires the pixel's Lead event once the wizard succeeded
func LeadConversion(ctx context.Context, contentName string) g.Node {
	params := map[string]string{"content_name": contentName, "status": "submitted"}
	return inlineScript(ctx, "if(window.fbq){fbq('track','Lead',"+JSON(params)+");}")
}
