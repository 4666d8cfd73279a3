package terms

// defaultVersion tags the seed document created when no terms exist yet.
const defaultVersion = "1.0"

const defaultTerms = `Terms and Conditions

Welcome to our interactive chatbot platform (the "HelloBuddy"). By using the Service, you agree to the following terms and conditions. Please read them carefully.

1. Acceptance of Terms

By accessing or using the Service, you confirm that you have read, understood, and agree to be bound by these Terms and Conditions, as well as our Privacy Policy. If you do not agree, you must not use the Service.

2. User Responsibilities

2.1 Account Creation and Authentication

You must create an account using our authentication system powered by Kinde.

You are responsible for maintaining the confidentiality of your account credentials.

2.2 Usage Limits

Free-tier users have limited access to upload and interact with PDFs, including restrictions on file size and page count.

Subscription users gain access to higher file size and page limits.

2.3 Prohibited ActionsYou agree not to:

Violate any laws or regulations.

Upload PDFs containing illegal, harmful, or offensive content.

Attempt to bypass usage limits or security measures.

2.4 Violations

Accounts found violating these terms may be suspended or permanently deleted at the sole discretion of the Service.

3. User Data and Privacy

3.1 Data Collection

Your interactions with the chatbot, including uploaded PDFs, are stored securely in an encrypted format.

3.2 Data Usage

Administrators can view details such as which PDFs you have uploaded and delete them if necessary.

Administrators cannot access your chat interactions unless required by law.

3.3 Data Security

All user data is stored in a secure environment, akin to platforms like S3 buckets, to ensure the highest level of security and encryption.

4. Administrator Rights

4.1 Access to Information

Administrators can only access user information or take action on accounts in compliance with applicable laws.

4.2 PDF Management

Administrators may delete uploaded PDFs if deemed necessary for policy enforcement or legal compliance.

5. Subscription and Cancellation

5.1 Subscription Benefits

Paid subscription users enjoy increased file size limits, additional page access, and other premium features.

5.2 Cancellation

You may cancel your subscription at any time. Upon cancellation, your access will revert to the free-tier limitations at the end of the billing cycle.

6. Limitation of Liability

The Service is provided "as is" and "as available." We do not guarantee uninterrupted access or functionality.

We are not responsible for any loss or damages resulting from your use of the Service, including but not limited to data breaches caused by factors beyond our control.

7. Modifications to Terms

We reserve the right to modify these Terms and Conditions at any time. Any changes will be communicated through the Service. Continued use after changes constitutes acceptance of the revised terms.

8. Governing Law

These Terms and Conditions are governed by and construed in accordance with the laws of Nepal.`
