// Package whatsapp is a typed client for the WhatsApp Business Cloud API.
//
// Sends, media, templates and the business profile are thin builders over the transport
// package. Reads and deletes always run under the retry policy. Sends are not retried
// unless WithRetrySends(true) is given, since a lost response would deliver the message twice.
//
//	client, err := whatsapp.New(whatsapp.Config{
//		AccessToken:       token,
//		PhoneNumberID:     phoneID,
//		BusinessAccountID: wabaID,
//		CacheTemplates:    true,
//	})
//	resp, err := client.SendTemplate(ctx, "+52 1 55 1234 5678", "order_ready", "es_MX",
//		map[string]any{"name": "Ana", "order": "A-17"})
package whatsapp
